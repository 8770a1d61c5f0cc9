package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/session"
	"github.com/hospoda/shiftboard/pkg/logger"
	"github.com/hospoda/shiftboard/pkg/utils"
	"gorm.io/gorm"
)

type AuditEntry struct {
	UserID       *uuid.UUID
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	Details      map[string]interface{}
	IPAddress    string
	RequestID    string
}

// AuditService writes audit rows from a single background worker so request
// handlers never wait on the insert.
type AuditService struct {
	DB    *gorm.DB
	queue chan models.AuditLog
	done  chan struct{}
	once  sync.Once

	// mu guards closed so a late LogAsync never sends on the closed queue.
	mu     sync.RWMutex
	closed bool
}

func NewAuditService(db *gorm.DB, queueSize int) *AuditService {
	if queueSize <= 0 {
		queueSize = 256
	}
	s := &AuditService{
		DB:    db,
		queue: make(chan models.AuditLog, queueSize),
		done:  make(chan struct{}),
	}
	go s.processQueue()
	return s
}

func (s *AuditService) LogAsync(entry AuditEntry) {
	if s == nil {
		return
	}
	row := models.AuditLog{
		UserID:       entry.UserID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      entry.Details,
		IPAddress:    entry.IPAddress,
		RequestID:    entry.RequestID,
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		logger.Warn("audit_entry_after_close", map[string]interface{}{
			"action":  entry.Action,
			"dropped": true,
		})
		return
	}

	select {
	case s.queue <- row:
	default:
		logger.Warn("audit_queue_full", map[string]interface{}{
			"action":  entry.Action,
			"dropped": true,
		})
	}
}

func (s *AuditService) processQueue() {
	defer close(s.done)
	for row := range s.queue {
		if err := s.DB.Create(&row).Error; err != nil {
			logger.Error("audit_log_insert_failed", err, map[string]interface{}{
				"action": row.Action,
			})
		}
	}
}

// Close stops accepting entries and waits until the queue is drained or ctx ends.
func (s *AuditService) Close(ctx context.Context) error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
	})
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type AuditFilter struct {
	ResourceType string
	ResourceID   *uuid.UUID
	UserID       *uuid.UUID
	Action       string
}

type AuditRecord struct {
	models.AuditLog
	Summary string `json:"summary"`
}

func (s *AuditService) List(ctx context.Context, sess session.Session, filter AuditFilter, p utils.PaginationParams) ([]AuditRecord, int64, error) {
	if err := authorize(sess, ActionAuditRead); err != nil {
		return nil, 0, err
	}

	query := s.DB.WithContext(ctx).Model(&models.AuditLog{})
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.ResourceID != nil {
		query = query.Where("resource_id = ?", *filter.ResourceID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	if err := utils.ApplyPagination(query.Order("created_at DESC"), p).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	records := make([]AuditRecord, len(logs))
	for i, log := range logs {
		records[i] = AuditRecord{AuditLog: log, Summary: Describe(log)}
	}
	return records, total, nil
}

// Describe renders an audit row as a short Czech sentence for the admin log.
func Describe(log models.AuditLog) string {
	actor := detailString(log.Details, "actor_name")
	if actor == "" {
		actor = "Někdo"
	}
	date := detailString(log.Details, "date")
	target := detailString(log.Details, "assigned_to_name")

	switch log.Action {
	case string(ActionShiftClaim):
		return fmt.Sprintf("%s převzal(a) směnu %s", actor, date)
	case string(ActionShiftRelease):
		return fmt.Sprintf("%s uvolnil(a) směnu %s", actor, date)
	case string(ActionShiftAssign):
		return fmt.Sprintf("%s přiřadil(a) směnu %s: %s", actor, date, target)
	case string(ActionShiftCreate):
		return fmt.Sprintf("%s vytvořil(a) směnu %s", actor, date)
	case string(ActionShiftUpdate):
		return fmt.Sprintf("%s upravil(a) směnu %s", actor, date)
	case string(ActionShiftDelete):
		return fmt.Sprintf("%s smazal(a) směnu %s", actor, date)
	case string(ActionShiftBulkCreate):
		return fmt.Sprintf("%s hromadně vytvořil(a) %s směn", actor, detailString(log.Details, "created"))
	case string(ActionTaskToggle):
		return fmt.Sprintf("%s označil(a) úkol \"%s\" jako %s", actor, detailString(log.Details, "title"), detailString(log.Details, "status"))
	case string(ActionPhotoUpload):
		return fmt.Sprintf("%s nahrál(a) fotku", actor)
	case string(ActionPhotoDelete):
		return fmt.Sprintf("%s smazal(a) fotku", actor)
	case string(ActionEmployeeUpdate):
		return fmt.Sprintf("%s upravil(a) zaměstnance %s", actor, detailString(log.Details, "employee"))
	case string(ActionEmployeeDelete):
		return fmt.Sprintf("%s odebral(a) zaměstnance %s", actor, detailString(log.Details, "employee"))
	case "user.login":
		return fmt.Sprintf("%s se přihlásil(a)", actor)
	case "user.register":
		return fmt.Sprintf("%s se zaregistroval(a)", actor)
	default:
		return fmt.Sprintf("%s: %s", actor, log.Action)
	}
}

func detailString(details map[string]interface{}, key string) string {
	if details == nil {
		return ""
	}
	v, ok := details[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return s
}
