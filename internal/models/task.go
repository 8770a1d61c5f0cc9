package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task.ShiftID is a loose reference: no foreign key, and deleting the shift
// leaves the task in place.
type Task struct {
	BaseModel
	Title       string       `json:"title" gorm:"type:varchar(255);not null"`
	Description string       `json:"description" gorm:"type:text;not null;default:''"`
	ShiftID     *uuid.UUID   `json:"shiftId,omitempty" gorm:"type:uuid;index"`
	Priority    TaskPriority `json:"priority" gorm:"type:varchar(10);not null;default:'medium'"`
	Status      TaskStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	DueDate     *string      `json:"dueDate,omitempty" gorm:"type:varchar(10)"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	CompletedBy *uuid.UUID   `json:"completedBy,omitempty" gorm:"type:uuid"`
	CreatedBy   uuid.UUID    `json:"createdBy" gorm:"type:uuid;not null"`
}

func (Task) TableName() string {
	return "tasks"
}
