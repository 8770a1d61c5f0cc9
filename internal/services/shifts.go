package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/session"
	"github.com/hospoda/shiftboard/pkg/logger"
	"gorm.io/gorm"
)

const listLookbackDays = 7

type ShiftView string

const (
	ShiftViewAll  ShiftView = "all"
	ShiftViewOpen ShiftView = "open"
	ShiftViewMine ShiftView = "mine"
)

func (v ShiftView) Valid() bool {
	return v == ShiftViewAll || v == ShiftViewOpen || v == ShiftViewMine
}

type ShiftFilter struct {
	From string
	To   string
	View ShiftView
}

type ShiftListItem struct {
	models.Shift
	IsPast bool `json:"isPast"`
}

type ShiftInput struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Position  string `json:"position"`
	Notes     string `json:"notes"`
}

type ShiftUpdate struct {
	Date      *string `json:"date"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Position  *string `json:"position"`
	Notes     *string `json:"notes"`
}

// ShiftService owns shift rows and the open/assigned state machine. Every
// transition is a compare-and-swap on the row version.
type ShiftService struct {
	DB    *gorm.DB
	Clock Clock
}

func NewShiftService(db *gorm.DB, clock Clock) *ShiftService {
	return &ShiftService{DB: db, Clock: clock}
}

func (s *ShiftService) List(ctx context.Context, sess session.Session, filter ShiftFilter) ([]ShiftListItem, error) {
	if !sess.Authenticated() {
		return nil, ErrForbidden
	}
	if filter.View == "" {
		filter.View = ShiftViewAll
	}
	if !filter.View.Valid() {
		return nil, invalidf("view must be all, open or mine")
	}
	if filter.From == "" {
		filter.From = s.Clock.DaysFromToday(-listLookbackDays)
	}
	if !validDate(filter.From) || (filter.To != "" && !validDate(filter.To)) {
		return nil, invalidf("from and to must be YYYY-MM-DD")
	}

	query := s.DB.WithContext(ctx).Model(&models.Shift{}).Where("date >= ?", filter.From)
	if filter.To != "" {
		query = query.Where("date <= ?", filter.To)
	}
	switch filter.View {
	case ShiftViewOpen:
		query = query.Where("status = ?", models.ShiftStatusOpen)
	case ShiftViewMine:
		query = query.Where("assigned_to = ?", sess.UserID)
	}

	var shifts []models.Shift
	if err := query.Order("date ASC").Order("start_time ASC").Find(&shifts).Error; err != nil {
		return nil, err
	}
	return s.decorate(shifts), nil
}

func (s *ShiftService) decorate(shifts []models.Shift) []ShiftListItem {
	today := s.Clock.Today()
	items := make([]ShiftListItem, len(shifts))
	for i, shift := range shifts {
		items[i] = ShiftListItem{Shift: shift, IsPast: shift.Date < today}
	}
	return items
}

// between returns every shift with from <= date <= to, in display order.
func (s *ShiftService) between(ctx context.Context, from, to string) ([]models.Shift, error) {
	var shifts []models.Shift
	err := s.DB.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").Order("start_time ASC").
		Find(&shifts).Error
	return shifts, err
}

func (s *ShiftService) Get(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	var shift models.Shift
	if err := s.DB.WithContext(ctx).First(&shift, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &shift, nil
}

func (s *ShiftService) Create(ctx context.Context, sess session.Session, in ShiftInput) (*models.Shift, error) {
	if err := authorize(sess, ActionShiftCreate); err != nil {
		return nil, err
	}
	shift, err := newShift(sess, in)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(shift).Error; err != nil {
		return nil, err
	}
	return shift, nil
}

func newShift(sess session.Session, in ShiftInput) (*models.Shift, error) {
	in.Date = strings.TrimSpace(in.Date)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	in.Position = strings.TrimSpace(in.Position)

	if err := validateShiftFields(in.Date, in.StartTime, in.EndTime, in.Position); err != nil {
		return nil, err
	}

	return &models.Shift{
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Position:  in.Position,
		Status:    models.ShiftStatusOpen,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedBy: sess.UserID,
		Version:   1,
	}, nil
}

func validateShiftFields(date, start, end, position string) error {
	if !validDate(date) {
		return invalidf("date must be YYYY-MM-DD")
	}
	if !validClock(start) || !validClock(end) {
		return invalidf("startTime and endTime must be HH:MM")
	}
	if start == end {
		return invalidf("startTime and endTime cannot be equal")
	}
	if position == "" {
		return invalidf("position is required")
	}
	return nil
}

// Update edits descriptive fields. Past shifts stay editable for admins.
func (s *ShiftService) Update(ctx context.Context, sess session.Session, id uuid.UUID, in ShiftUpdate) (*models.Shift, error) {
	if err := authorize(sess, ActionShiftUpdate); err != nil {
		return nil, err
	}

	shift, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	date, start, end, position := shift.Date, shift.StartTime, shift.EndTime, shift.Position
	if in.Date != nil {
		date = strings.TrimSpace(*in.Date)
	}
	if in.StartTime != nil {
		start = strings.TrimSpace(*in.StartTime)
	}
	if in.EndTime != nil {
		end = strings.TrimSpace(*in.EndTime)
	}
	if in.Position != nil {
		position = strings.TrimSpace(*in.Position)
	}
	if err := validateShiftFields(date, start, end, position); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"date":       date,
		"start_time": start,
		"end_time":   end,
		"position":   position,
		"version":    shift.Version + 1,
	}
	if in.Notes != nil {
		updates["notes"] = strings.TrimSpace(*in.Notes)
	}

	result := s.DB.WithContext(ctx).Model(&models.Shift{}).
		Where("id = ? AND version = ?", id, shift.Version).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrConflict
	}
	return s.Get(ctx, id)
}

// Delete removes the shift unconditionally. Tasks pointing at it are kept.
func (s *ShiftService) Delete(ctx context.Context, sess session.Session, id uuid.UUID) (*models.Shift, error) {
	if err := authorize(sess, ActionShiftDelete); err != nil {
		return nil, err
	}
	shift, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Delete(&models.Shift{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *ShiftService) Claim(ctx context.Context, sess session.Session, id uuid.UUID) (*models.Shift, error) {
	if err := authorize(sess, ActionShiftClaim); err != nil {
		return nil, err
	}

	check := func(shift *models.Shift) error {
		if shift.Status != models.ShiftStatusOpen {
			return ErrShiftNotOpen
		}
		return s.notPast(shift)
	}
	apply := func(*models.Shift) map[string]interface{} {
		return map[string]interface{}{
			"status":           models.ShiftStatusAssigned,
			"assigned_to":      sess.UserID,
			"assigned_to_name": sess.DisplayName,
		}
	}
	return s.transition(ctx, id, check, apply)
}

// Release returns an assigned shift to open. Only the assignee or an admin may.
func (s *ShiftService) Release(ctx context.Context, sess session.Session, id uuid.UUID) (*models.Shift, error) {
	if err := authorize(sess, ActionShiftRelease); err != nil {
		return nil, err
	}

	check := func(shift *models.Shift) error {
		if shift.Status != models.ShiftStatusAssigned {
			return ErrShiftNotAssigned
		}
		if !shift.IsAssignedTo(sess.UserID) && !sess.IsAdmin() {
			return ErrForbidden
		}
		return s.notPast(shift)
	}
	apply := func(*models.Shift) map[string]interface{} {
		return map[string]interface{}{
			"status":           models.ShiftStatusOpen,
			"assigned_to":      nil,
			"assigned_to_name": nil,
		}
	}
	return s.transition(ctx, id, check, apply)
}

func (s *ShiftService) Assign(ctx context.Context, sess session.Session, id, target uuid.UUID) (*models.Shift, error) {
	if err := authorize(sess, ActionShiftAssign); err != nil {
		return nil, err
	}

	var employee models.UserProfile
	if err := s.DB.WithContext(ctx).First(&employee, "uid = ?", target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidf("employee not found")
		}
		return nil, err
	}
	if !employee.IsActive {
		return nil, invalidf("employee is not active")
	}

	check := func(shift *models.Shift) error {
		if shift.Status != models.ShiftStatusOpen {
			return ErrShiftNotOpen
		}
		return s.notPast(shift)
	}
	apply := func(*models.Shift) map[string]interface{} {
		return map[string]interface{}{
			"status":           models.ShiftStatusAssigned,
			"assigned_to":      employee.UID,
			"assigned_to_name": employee.DisplayName,
		}
	}
	return s.transition(ctx, id, check, apply)
}

func (s *ShiftService) notPast(shift *models.Shift) error {
	if shift.Date < s.Clock.Today() {
		return ErrShiftInPast
	}
	return nil
}

// transition applies a state change only if the row still has the version
// and status it was read with. A lost race is reported as the state error
// the caller would have seen had it read the new row, or ErrConflict.
func (s *ShiftService) transition(
	ctx context.Context,
	id uuid.UUID,
	check func(*models.Shift) error,
	apply func(*models.Shift) map[string]interface{},
) (*models.Shift, error) {
	shift, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := check(shift); err != nil {
		return nil, err
	}

	updates := apply(shift)
	updates["version"] = shift.Version + 1
	updates["updated_at"] = time.Now().UTC()

	result := s.DB.WithContext(ctx).Model(&models.Shift{}).
		Where("id = ? AND version = ? AND status = ?", id, shift.Version, shift.Status).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := check(current); err != nil {
			return nil, err
		}
		logger.Warn("shift_transition_conflict", map[string]interface{}{
			"shift_id": id.String(),
			"version":  shift.Version,
		})
		return nil, ErrConflict
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !updated.Consistent() {
		logger.Error("shift_state_inconsistent", errors.New("status and assignee disagree"), map[string]interface{}{
			"shift_id": id.String(),
			"status":   string(updated.Status),
		})
	}
	return updated, nil
}

func validDate(value string) bool {
	t, err := time.Parse(models.DateLayout, value)
	return err == nil && t.Format(models.DateLayout) == value
}

func validClock(value string) bool {
	t, err := time.Parse(models.TimeLayout, value)
	return err == nil && t.Format(models.TimeLayout) == value
}
