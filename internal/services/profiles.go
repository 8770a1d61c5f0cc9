package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/session"
	"github.com/hospoda/shiftboard/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	BootstrapDisplayName = "Administrátor"
	fallbackDisplayName  = "Uživatel"
)

// ProfileService resolves identities to profiles and manages employees.
type ProfileService struct {
	DB             *gorm.DB
	BootstrapEmail string
}

func NewProfileService(db *gorm.DB, bootstrapEmail string) *ProfileService {
	return &ProfileService{DB: db, BootstrapEmail: strings.ToLower(bootstrapEmail)}
}

func (s *ProfileService) IsBootstrap(email string) bool {
	return s.BootstrapEmail != "" && strings.EqualFold(email, s.BootstrapEmail)
}

// Resolve returns the identity's profile, creating it on first sight. The
// bootstrap administrator is corrected back to admin whenever it has drifted.
func (s *ProfileService) Resolve(ctx context.Context, identity *models.Identity) (*models.UserProfile, error) {
	isBootstrap := s.IsBootstrap(identity.Email)

	var profile models.UserProfile
	err := s.DB.WithContext(ctx).First(&profile, "uid = ?", identity.ID).Error
	switch {
	case err == nil:
		if isBootstrap {
			return s.correctBootstrap(ctx, &profile)
		}
		return &profile, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.create(ctx, identity, isBootstrap)
	default:
		return nil, err
	}
}

func (s *ProfileService) create(ctx context.Context, identity *models.Identity, isBootstrap bool) (*models.UserProfile, error) {
	var profile models.UserProfile

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stats models.MetaStats
		if err := tx.FirstOrCreate(&stats, models.MetaStats{ID: models.MetaStatsRowID}).Error; err != nil {
			return err
		}

		role := models.UserRoleEmployee
		if isBootstrap || stats.UserCount == 0 {
			role = models.UserRoleAdmin
		}

		profile = newProfile(identity, role, isBootstrap)
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&profile)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Another request created it first.
			return tx.First(&profile, "uid = ?", identity.ID).Error
		}

		return tx.Model(&models.MetaStats{}).
			Where("id = ?", models.MetaStatsRowID).
			Update("user_count", gorm.Expr("user_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	logger.InfoWithUser(profile.UID.String(), "profile_created", map[string]interface{}{
		"email": profile.Email,
		"role":  string(profile.Role),
	})
	return &profile, nil
}

func newProfile(identity *models.Identity, role models.UserRole, isBootstrap bool) models.UserProfile {
	name := strings.TrimSpace(identity.DisplayName)
	if isBootstrap {
		name = BootstrapDisplayName
	}
	if name == "" {
		name = strings.Split(identity.Email, "@")[0]
	}
	if name == "" {
		name = fallbackDisplayName
	}

	return models.UserProfile{
		UID:         identity.ID,
		Email:       identity.Email,
		DisplayName: name,
		PhotoURL:    identity.PhotoURL,
		Role:        role,
		IsActive:    true,
	}
}

func (s *ProfileService) correctBootstrap(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	if profile.Role == models.UserRoleAdmin && profile.DisplayName == BootstrapDisplayName && profile.IsActive {
		return profile, nil
	}

	updates := map[string]interface{}{
		"role":         models.UserRoleAdmin,
		"display_name": BootstrapDisplayName,
		"is_active":    true,
	}
	if err := s.DB.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
		return nil, err
	}
	logger.Warn("bootstrap_admin_corrected", map[string]interface{}{
		"uid": profile.UID.String(),
	})

	profile.Role = models.UserRoleAdmin
	profile.DisplayName = BootstrapDisplayName
	profile.IsActive = true
	return profile, nil
}

func (s *ProfileService) Get(ctx context.Context, uid uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.DB.WithContext(ctx).First(&profile, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// ProfileUpdate is the self-service subset of profile fields.
type ProfileUpdate struct {
	DisplayName *string
	PhotoURL    *string
	Phone       *string
	Address     *string
	BirthDate   *string
}

func (s *ProfileService) UpdateOwn(ctx context.Context, sess session.Session, in ProfileUpdate) (*models.UserProfile, error) {
	if err := authorize(sess, ActionProfileEdit); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" {
			return nil, invalidf("displayName cannot be empty")
		}
		if s.IsBootstrap(sess.Email) && name != BootstrapDisplayName {
			return nil, ErrBootstrapProtected
		}
		updates["display_name"] = name
	}
	if in.BirthDate != nil && strings.TrimSpace(*in.BirthDate) != "" {
		if !validDate(strings.TrimSpace(*in.BirthDate)) {
			return nil, invalidf("birthDate must be YYYY-MM-DD")
		}
	}
	setOptional(updates, "photo_url", in.PhotoURL)
	setOptional(updates, "phone", in.Phone)
	setOptional(updates, "address", in.Address)
	setOptional(updates, "birth_date", in.BirthDate)

	if len(updates) == 0 {
		return nil, invalidf("no valid fields to update")
	}

	result := s.DB.WithContext(ctx).Model(&models.UserProfile{}).Where("uid = ?", sess.UserID).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, sess.UserID)
}

// EmployeeUpdate holds the admin-only profile fields.
type EmployeeUpdate struct {
	Role       *models.UserRole
	Position   *string
	HourlyRate *float64
	AdminNotes *string
	StartDate  *string
	IsActive   *bool
}

func (s *ProfileService) ListEmployees(ctx context.Context, sess session.Session) ([]models.UserProfile, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	var profiles []models.UserProfile
	if err := s.DB.WithContext(ctx).Order("display_name ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *ProfileService) UpdateEmployee(ctx context.Context, sess session.Session, uid uuid.UUID, in EmployeeUpdate) (*models.UserProfile, error) {
	if err := authorize(sess, ActionEmployeeUpdate); err != nil {
		return nil, err
	}

	if uid == sess.UserID && (in.Role != nil || in.IsActive != nil) {
		return nil, ErrSelfRoleChange
	}

	target, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, invalidf("invalid role")
		}
		if s.IsBootstrap(target.Email) && *in.Role != models.UserRoleAdmin {
			return nil, ErrBootstrapProtected
		}
		updates["role"] = *in.Role
	}
	if in.IsActive != nil {
		if s.IsBootstrap(target.Email) && !*in.IsActive {
			return nil, ErrBootstrapProtected
		}
		updates["is_active"] = *in.IsActive
	}
	if in.HourlyRate != nil {
		if *in.HourlyRate < 0 {
			return nil, invalidf("hourlyRate cannot be negative")
		}
		updates["hourly_rate"] = *in.HourlyRate
	}
	if in.StartDate != nil && strings.TrimSpace(*in.StartDate) != "" && !validDate(strings.TrimSpace(*in.StartDate)) {
		return nil, invalidf("startDate must be YYYY-MM-DD")
	}
	setOptional(updates, "position", in.Position)
	setOptional(updates, "admin_notes", in.AdminNotes)
	setOptional(updates, "start_date", in.StartDate)

	if len(updates) == 0 {
		return nil, invalidf("no valid fields to update")
	}

	if err := s.DB.WithContext(ctx).Model(&models.UserProfile{}).Where("uid = ?", uid).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, uid)
}

// DeleteEmployee removes the profile only. The identity survives and
// re-resolves to a fresh employee profile on its next sign-in.
func (s *ProfileService) DeleteEmployee(ctx context.Context, sess session.Session, uid uuid.UUID) error {
	if err := authorize(sess, ActionEmployeeDelete); err != nil {
		return err
	}
	if uid == sess.UserID {
		return ErrSelfDelete
	}

	target, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	if s.IsBootstrap(target.Email) {
		return ErrBootstrapProtected
	}

	return s.DB.WithContext(ctx).Delete(&models.UserProfile{}, "uid = ?", uid).Error
}

type BackfillResult struct {
	Created []models.UserProfile `json:"created"`
	Skipped int                  `json:"skipped"`
}

// Backfill creates employee profiles for identities that never got one.
func (s *ProfileService) Backfill(ctx context.Context, sess session.Session) (*BackfillResult, error) {
	if err := authorize(sess, ActionEmployeeBackfill); err != nil {
		return nil, err
	}

	var identities []models.Identity
	if err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&identities).Error; err != nil {
		return nil, err
	}

	result := &BackfillResult{Created: []models.UserProfile{}}
	for i := range identities {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.UserProfile{}).Where("uid = ?", identities[i].ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			result.Skipped++
			continue
		}
		profile, err := s.Resolve(ctx, &identities[i])
		if err != nil {
			return nil, err
		}
		result.Created = append(result.Created, *profile)
	}

	logger.InfoWithUser(sess.UserID.String(), "profiles_backfilled", map[string]interface{}{
		"created": len(result.Created),
		"skipped": result.Skipped,
	})
	return result, nil
}

// setOptional maps a blank string to NULL and trims anything else.
func setOptional(updates map[string]interface{}, column string, value *string) {
	if value == nil {
		return
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		updates[column] = nil
		return
	}
	updates[column] = trimmed
}
