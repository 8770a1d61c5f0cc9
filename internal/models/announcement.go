package models

import (
	"time"

	"github.com/google/uuid"
)

type AnnouncementPriority string

const (
	AnnouncementPriorityNormal    AnnouncementPriority = "normal"
	AnnouncementPriorityImportant AnnouncementPriority = "important"
	AnnouncementPriorityUrgent    AnnouncementPriority = "urgent"
)

func (p AnnouncementPriority) Valid() bool {
	return p == AnnouncementPriorityNormal || p == AnnouncementPriorityImportant || p == AnnouncementPriorityUrgent
}

type Announcement struct {
	BaseModel
	Title         string               `json:"title" gorm:"type:varchar(255);not null"`
	Content       string               `json:"content" gorm:"type:text;not null"`
	Priority      AnnouncementPriority `json:"priority" gorm:"type:varchar(20);not null;default:'normal'"`
	IsActive      bool                 `json:"isActive" gorm:"not null;index"`
	ExpiresAt     *time.Time           `json:"expiresAt,omitempty"`
	CreatedBy     uuid.UUID            `json:"createdBy" gorm:"type:uuid;not null"`
	CreatedByName string               `json:"createdByName" gorm:"type:varchar(150);not null"`
}

func (Announcement) TableName() string {
	return "announcements"
}
