package models

import "github.com/google/uuid"

type ShiftStatus string

const (
	ShiftStatusOpen     ShiftStatus = "open"
	ShiftStatusAssigned ShiftStatus = "assigned"
)

// DateLayout is the wire and storage format of shift dates. Dates compare
// lexicographically, which range queries rely on.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Shift struct {
	BaseModel
	Date           string      `json:"date" gorm:"type:varchar(10);not null;index"`
	StartTime      string      `json:"startTime" gorm:"type:varchar(5);not null"`
	EndTime        string      `json:"endTime" gorm:"type:varchar(5);not null"`
	Position       string      `json:"position" gorm:"type:varchar(100);not null"`
	Status         ShiftStatus `json:"status" gorm:"type:varchar(20);not null;default:'open';index"`
	AssignedTo     *uuid.UUID  `json:"assignedTo,omitempty" gorm:"type:uuid;index"`
	AssignedToName *string     `json:"assignedToName,omitempty" gorm:"type:varchar(150)"`
	Notes          string      `json:"notes" gorm:"type:text;not null;default:''"`
	CreatedBy      uuid.UUID   `json:"createdBy" gorm:"type:uuid;not null"`
	Version        int64       `json:"version" gorm:"not null;default:1"`
}

func (Shift) TableName() string {
	return "shifts"
}

// Consistent reports whether status and assignee agree.
func (s *Shift) Consistent() bool {
	switch s.Status {
	case ShiftStatusOpen:
		return s.AssignedTo == nil
	case ShiftStatusAssigned:
		return s.AssignedTo != nil && *s.AssignedTo != uuid.Nil
	default:
		return false
	}
}

func (s *Shift) IsAssignedTo(uid uuid.UUID) bool {
	return s.AssignedTo != nil && *s.AssignedTo == uid
}
