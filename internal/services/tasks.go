package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/session"
	"gorm.io/gorm"
)

type TaskFilter struct {
	Status  models.TaskStatus
	ShiftID *uuid.UUID
	Limit   int
}

type TaskInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	ShiftID     *uuid.UUID          `json:"shiftId"`
	DueDate     *string             `json:"dueDate"`
}

type TaskUpdate struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Priority    *models.TaskPriority `json:"priority"`
	ShiftID     *string              `json:"shiftId"`
	DueDate     *string              `json:"dueDate"`
}

type TaskService struct {
	DB    *gorm.DB
	Clock Clock
}

func NewTaskService(db *gorm.DB, clock Clock) *TaskService {
	return &TaskService{DB: db, Clock: clock}
}

// List shows admins every task. Employees see only tasks attached to shifts
// assigned to them.
func (s *TaskService) List(ctx context.Context, sess session.Session, filter TaskFilter) ([]models.Task, error) {
	if !sess.Authenticated() {
		return nil, ErrForbidden
	}

	query := s.DB.WithContext(ctx).Model(&models.Task{})
	if !sess.IsAdmin() {
		mine := s.DB.Model(&models.Shift{}).Select("id").Where("assigned_to = ?", sess.UserID)
		query = query.Where("shift_id IN (?)", mine)
	}
	if filter.Status != "" {
		if filter.Status != models.TaskStatusPending && filter.Status != models.TaskStatusCompleted {
			return nil, invalidf("status must be pending or completed")
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ShiftID != nil {
		query = query.Where("shift_id = ?", *filter.ShiftID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) ListForShift(ctx context.Context, sess session.Session, shiftID uuid.UUID) ([]models.Task, error) {
	if !sess.Authenticated() {
		return nil, ErrForbidden
	}
	var tasks []models.Task
	err := s.DB.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := s.DB.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Create(ctx context.Context, sess session.Session, in TaskInput) (*models.Task, error) {
	if err := authorize(sess, ActionTaskCreate); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, invalidf("title is required")
	}
	if in.Priority == "" {
		in.Priority = models.TaskPriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, invalidf("priority must be low, medium or high")
	}
	if in.DueDate != nil && !validDate(*in.DueDate) {
		return nil, invalidf("dueDate must be YYYY-MM-DD")
	}
	if in.ShiftID != nil {
		if err := s.requireShift(ctx, *in.ShiftID); err != nil {
			return nil, err
		}
	}

	task := models.Task{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Priority:    in.Priority,
		Status:      models.TaskStatusPending,
		ShiftID:     in.ShiftID,
		DueDate:     in.DueDate,
		CreatedBy:   sess.UserID,
	}
	if err := s.DB.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) requireShift(ctx context.Context, shiftID uuid.UUID) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Shift{}).Where("id = ?", shiftID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return invalidf("shift not found")
	}
	return nil
}

func (s *TaskService) Update(ctx context.Context, sess session.Session, id uuid.UUID, in TaskUpdate) (*models.Task, error) {
	if err := authorize(sess, ActionTaskUpdate); err != nil {
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
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, invalidf("priority must be low, medium or high")
		}
		updates["priority"] = *in.Priority
	}
	if in.ShiftID != nil {
		raw := strings.TrimSpace(*in.ShiftID)
		if raw == "" {
			updates["shift_id"] = nil
		} else {
			shiftID, err := uuid.Parse(raw)
			if err != nil {
				return nil, invalidf("invalid shiftId")
			}
			if err := s.requireShift(ctx, shiftID); err != nil {
				return nil, err
			}
			updates["shift_id"] = shiftID
		}
	}
	if in.DueDate != nil {
		raw := strings.TrimSpace(*in.DueDate)
		if raw != "" && !validDate(raw) {
			return nil, invalidf("dueDate must be YYYY-MM-DD")
		}
		setOptional(updates, "due_date", &raw)
	}

	if len(updates) == 0 {
		return nil, invalidf("no valid fields to update")
	}
	if err := s.DB.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, sess session.Session, id uuid.UUID) error {
	if err := authorize(sess, ActionTaskDelete); err != nil {
		return err
	}
	result := s.DB.WithContext(ctx).Delete(&models.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Toggle flips pending and completed. Completing stamps who and when;
// reopening clears both.
func (s *TaskService) Toggle(ctx context.Context, sess session.Session, id uuid.UUID) (*models.Task, error) {
	if err := authorize(sess, ActionTaskToggle); err != nil {
		return nil, err
	}

	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var updates map[string]interface{}
	if task.Status == models.TaskStatusCompleted {
		updates = map[string]interface{}{
			"status":       models.TaskStatusPending,
			"completed_at": nil,
			"completed_by": nil,
		}
	} else {
		updates = map[string]interface{}{
			"status":       models.TaskStatusCompleted,
			"completed_at": s.Clock.now().UTC(),
			"completed_by": sess.UserID,
		}
	}

	result := s.DB.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status = ?", id, task.Status).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrConflict
	}
	return s.Get(ctx, id)
}
