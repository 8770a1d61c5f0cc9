package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hospoda/shiftboard/internal/config"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/session"
	"github.com/hospoda/shiftboard/pkg/logger"
	"github.com/teambition/rrule-go"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	MaxBulkShifts   = 62
	bulkConcurrency = 4
)

type BulkTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// BulkShiftRequest describes a batch of identical shifts. Dates come from an
// explicit list, a recurrence rule, or both. The time slot comes from a named
// template or from the inline fields.
type BulkShiftRequest struct {
	Dates      []string   `json:"dates"`
	RRule      string     `json:"rrule"`
	Recurrence string     `json:"recurrence"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Template   string     `json:"template"`
	StartTime  string     `json:"startTime"`
	EndTime    string     `json:"endTime"`
	Position   string     `json:"position"`
	Notes      string     `json:"notes"`
	TaskSet    string     `json:"taskSet"`
	Tasks      []BulkTask `json:"tasks"`
}

type BulkFailure struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

type BulkResult struct {
	Created      []models.Shift `json:"created"`
	TasksCreated int            `json:"tasksCreated"`
	Failed       []BulkFailure  `json:"failed"`
}

// BulkShiftService fans a template out over many dates. Each shift and its
// tasks commit together; the batch as a whole is not atomic.
type BulkShiftService struct {
	DB        *gorm.DB
	Clock     Clock
	Templates *config.TemplateCatalog
}

func NewBulkShiftService(db *gorm.DB, clock Clock, templates *config.TemplateCatalog) *BulkShiftService {
	if templates == nil {
		templates = &config.TemplateCatalog{}
	}
	return &BulkShiftService{DB: db, Clock: clock, Templates: templates}
}

func (s *BulkShiftService) Create(ctx context.Context, sess session.Session, req BulkShiftRequest) (*BulkResult, error) {
	if err := authorize(sess, ActionShiftBulkCreate); err != nil {
		return nil, err
	}

	slot, err := s.resolveSlot(req)
	if err != nil {
		return nil, err
	}
	if err := validateShiftFields("2000-01-01", slot.StartTime, slot.EndTime, slot.Position); err != nil {
		return nil, err
	}

	tasks, err := s.resolveTasks(req)
	if err != nil {
		return nil, err
	}

	dates, failed, err := s.resolveDates(req)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Created: []models.Shift{}, Failed: failed}
	created := make([]*models.Shift, len(dates))
	errs := make([]error, len(dates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)
	for i, date := range dates {
		g.Go(func() error {
			shift, err := s.createOne(gctx, sess, date, slot, req.Notes, tasks)
			created[i], errs[i] = shift, err
			return nil
		})
	}
	_ = g.Wait()

	for i, date := range dates {
		if errs[i] != nil {
			logger.ErrorWithUser(sess.UserID.String(), "bulk_shift_failed", errs[i], map[string]interface{}{"date": date})
			result.Failed = append(result.Failed, BulkFailure{Date: date, Error: errs[i].Error()})
			continue
		}
		result.Created = append(result.Created, *created[i])
		result.TasksCreated += len(tasks)
	}

	logger.InfoWithUser(sess.UserID.String(), "bulk_shifts_created", map[string]interface{}{
		"created": len(result.Created),
		"failed":  len(result.Failed),
		"tasks":   result.TasksCreated,
	})
	return result, nil
}

func (s *BulkShiftService) createOne(ctx context.Context, sess session.Session, date string, slot config.ShiftTemplate, notes string, tasks []BulkTask) (*models.Shift, error) {
	shift, err := newShift(sess, ShiftInput{
		Date:      date,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		Position:  slot.Position,
		Notes:     notes,
	})
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(shift).Error; err != nil {
			return err
		}
		for _, t := range tasks {
			shiftID := shift.ID
			task := models.Task{
				Title:       t.Title,
				Description: t.Description,
				Priority:    models.TaskPriority(t.Priority),
				Status:      models.TaskStatusPending,
				ShiftID:     &shiftID,
				CreatedBy:   sess.UserID,
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *BulkShiftService) resolveSlot(req BulkShiftRequest) (config.ShiftTemplate, error) {
	if name := strings.TrimSpace(req.Template); name != "" {
		slot, ok := s.Templates.Shift(name)
		if !ok {
			return config.ShiftTemplate{}, invalidf("unknown shift template %q", name)
		}
		return slot, nil
	}
	return config.ShiftTemplate{
		StartTime: strings.TrimSpace(req.StartTime),
		EndTime:   strings.TrimSpace(req.EndTime),
		Position:  strings.TrimSpace(req.Position),
	}, nil
}

func (s *BulkShiftService) resolveTasks(req BulkShiftRequest) ([]BulkTask, error) {
	var tasks []BulkTask
	if name := strings.TrimSpace(req.TaskSet); name != "" {
		set, ok := s.Templates.TaskSet(name)
		if !ok {
			return nil, invalidf("unknown task set %q", name)
		}
		for _, t := range set.Tasks {
			tasks = append(tasks, BulkTask{Title: t.Title, Description: t.Description, Priority: t.Priority})
		}
	}
	tasks = append(tasks, req.Tasks...)

	for i := range tasks {
		tasks[i].Title = strings.TrimSpace(tasks[i].Title)
		tasks[i].Description = strings.TrimSpace(tasks[i].Description)
		if tasks[i].Title == "" {
			return nil, invalidf("task title is required")
		}
		if tasks[i].Priority == "" {
			tasks[i].Priority = string(models.TaskPriorityMedium)
		}
		if !models.TaskPriority(tasks[i].Priority).Valid() {
			return nil, invalidf("invalid task priority %q", tasks[i].Priority)
		}
	}
	return tasks, nil
}

// resolveDates merges explicit dates with rule occurrences, dropping
// duplicates. Malformed explicit dates become failures instead of aborting.
func (s *BulkShiftService) resolveDates(req BulkShiftRequest) ([]string, []BulkFailure, error) {
	seen := make(map[string]bool)
	var dates []string
	failed := []BulkFailure{}

	for _, raw := range req.Dates {
		date := strings.TrimSpace(raw)
		if !validDate(date) {
			failed = append(failed, BulkFailure{Date: raw, Error: "date must be YYYY-MM-DD"})
			continue
		}
		if !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
	}

	rule := strings.TrimSpace(req.RRule)
	if name := strings.TrimSpace(req.Recurrence); name != "" {
		r, ok := s.Templates.Recurrence(name)
		if !ok {
			return nil, nil, invalidf("unknown recurrence %q", name)
		}
		rule = r.RRule
	}
	if rule != "" {
		occurrences, err := s.expandRule(rule, req.From, req.To)
		if err != nil {
			return nil, nil, err
		}
		for _, date := range occurrences {
			if !seen[date] {
				seen[date] = true
				dates = append(dates, date)
			}
		}
	}

	if len(dates) == 0 && len(failed) == 0 {
		return nil, nil, invalidf("at least one date or a recurrence is required")
	}
	if len(dates) > MaxBulkShifts {
		return nil, nil, invalidf("at most %d shifts per batch", MaxBulkShifts)
	}

	sort.Strings(dates)
	return dates, failed, nil
}

// ExpandRule lists the dates a rule produces from `from` (default today) up
// to `to` or MaxBulkShifts occurrences, whichever comes first.
func (s *BulkShiftService) expandRule(rule, from, to string) ([]string, error) {
	loc := s.Clock.Location
	if loc == nil {
		loc = time.UTC
	}

	if from == "" {
		from = s.Clock.Today()
	}
	start, err := time.ParseInLocation(models.DateLayout, from, loc)
	if err != nil {
		return nil, invalidf("from must be YYYY-MM-DD")
	}

	opts, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, invalidf("invalid rrule: %v", err)
	}
	opts.Dtstart = start
	r, err := rrule.NewRRule(*opts)
	if err != nil {
		return nil, invalidf("invalid rrule: %v", err)
	}

	var occurrences []time.Time
	if to != "" {
		end, err := time.ParseInLocation(models.DateLayout, to, loc)
		if err != nil {
			return nil, invalidf("to must be YYYY-MM-DD")
		}
		if end.Before(start) {
			return nil, invalidf("to must not be before from")
		}
		occurrences = r.Between(start, end.Add(24*time.Hour-time.Second), true)
	} else {
		next := r.Iterator()
		for value, ok := next(); ok && len(occurrences) < MaxBulkShifts; value, ok = next() {
			occurrences = append(occurrences, value)
		}
	}

	if len(occurrences) > MaxBulkShifts {
		occurrences = occurrences[:MaxBulkShifts]
	}

	dates := make([]string, len(occurrences))
	for i, t := range occurrences {
		dates[i] = t.In(loc).Format(models.DateLayout)
	}
	return dates, nil
}
