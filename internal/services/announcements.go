package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/session"
	"gorm.io/gorm"
)

type AnnouncementInput struct {
	Title     string                      `json:"title"`
	Content   string                      `json:"content"`
	Priority  models.AnnouncementPriority `json:"priority"`
	IsActive  *bool                       `json:"isActive"`
	ExpiresAt *time.Time                  `json:"expiresAt"`
}

type AnnouncementUpdate struct {
	Title        *string                      `json:"title"`
	Content      *string                      `json:"content"`
	Priority     *models.AnnouncementPriority `json:"priority"`
	IsActive     *bool                        `json:"isActive"`
	ExpiresAt    *time.Time                   `json:"expiresAt"`
	ClearExpires bool                         `json:"clearExpires"`
}

// AnnouncementService backs the notice board.
type AnnouncementService struct {
	DB    *gorm.DB
	Clock Clock
}

func NewAnnouncementService(db *gorm.DB, clock Clock) *AnnouncementService {
	return &AnnouncementService{DB: db, Clock: clock}
}

// ListActive returns active, unexpired announcements, newest first. A
// limit of zero means no limit. Admins may ask for inactive ones too.
func (s *AnnouncementService) ListActive(ctx context.Context, sess session.Session, includeInactive bool, limit int) ([]models.Announcement, error) {
	if !sess.Authenticated() {
		return nil, ErrForbidden
	}

	query := s.DB.WithContext(ctx).Model(&models.Announcement{})
	if !includeInactive || !sess.IsAdmin() {
		query = query.Where("is_active = ?", true).
			Where("expires_at IS NULL OR expires_at > ?", s.Clock.now().UTC())
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var announcements []models.Announcement
	if err := query.Order("created_at DESC").Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}

func (s *AnnouncementService) Get(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	var a models.Announcement
	if err := s.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *AnnouncementService) Create(ctx context.Context, sess session.Session, in AnnouncementInput) (*models.Announcement, error) {
	if err := authorize(sess, ActionAnnouncementCreate); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if in.Title == "" || in.Content == "" {
		return nil, invalidf("title and content are required")
	}
	if in.Priority == "" {
		in.Priority = models.AnnouncementPriorityNormal
	}
	if !in.Priority.Valid() {
		return nil, invalidf("priority must be normal, important or urgent")
	}

	if in.ExpiresAt != nil {
		utc := in.ExpiresAt.UTC()
		in.ExpiresAt = &utc
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	a := models.Announcement{
		Title:         in.Title,
		Content:       in.Content,
		Priority:      in.Priority,
		IsActive:      active,
		ExpiresAt:     in.ExpiresAt,
		CreatedBy:     sess.UserID,
		CreatedByName: sess.DisplayName,
	}
	if err := s.DB.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AnnouncementService) Update(ctx context.Context, sess session.Session, id uuid.UUID, in AnnouncementUpdate) (*models.Announcement, error) {
	if err := authorize(sess, ActionAnnouncementUpdate); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalidf("title cannot be empty")
		}
		updates["title"] = title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, invalidf("content cannot be empty")
		}
		updates["content"] = content
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, invalidf("priority must be normal, important or urgent")
		}
		updates["priority"] = *in.Priority
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.ClearExpires {
		updates["expires_at"] = nil
	} else if in.ExpiresAt != nil {
		updates["expires_at"] = in.ExpiresAt.UTC()
	}

	if len(updates) == 0 {
		return nil, invalidf("no valid fields to update")
	}
	if err := s.DB.WithContext(ctx).Model(&models.Announcement{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *AnnouncementService) Delete(ctx context.Context, sess session.Session, id uuid.UUID) error {
	if err := authorize(sess, ActionAnnouncementDelete); err != nil {
		return err
	}
	result := s.DB.WithContext(ctx).Delete(&models.Announcement{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
