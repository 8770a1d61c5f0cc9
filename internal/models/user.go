package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleEmployee UserRole = "employee"
)

func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleEmployee
}

type AuthProvider string

const (
	AuthProviderPassword AuthProvider = "password"
	AuthProviderGoogle   AuthProvider = "google"
)

// Identity is the credential record. Its ID is the uid every other record refers to.
type Identity struct {
	BaseModel
	Email           string       `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash    string       `json:"-" gorm:"type:text"`
	Provider        AuthProvider `json:"provider" gorm:"type:varchar(20);not null;default:'password'"`
	ProviderSubject *string      `json:"-" gorm:"type:varchar(255);index"`
	DisplayName     string       `json:"displayName" gorm:"type:varchar(150)"`
	PhotoURL        *string      `json:"photoURL,omitempty" gorm:"type:text"`
}

// UserProfile is created lazily the first time an identity is resolved.
type UserProfile struct {
	UID         uuid.UUID `json:"uid" gorm:"column:uid;type:uuid;primaryKey"`
	Email       string    `json:"email" gorm:"type:varchar(255);not null"`
	DisplayName string    `json:"displayName" gorm:"type:varchar(150);not null;index"`
	PhotoURL    *string   `json:"photoURL,omitempty" gorm:"type:text"`
	Role        UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'employee'"`
	Phone       *string   `json:"phone,omitempty" gorm:"type:varchar(50)"`
	Address     *string   `json:"address,omitempty" gorm:"type:text"`
	BirthDate   *string   `json:"birthDate,omitempty" gorm:"type:varchar(10)"`
	StartDate   *string   `json:"startDate,omitempty" gorm:"type:varchar(10)"`
	Position    *string   `json:"position,omitempty" gorm:"type:varchar(100)"`
	AdminNotes  *string   `json:"adminNotes,omitempty" gorm:"type:text"`
	HourlyRate  *float64  `json:"hourlyRate,omitempty"`
	IsActive    bool      `json:"isActive" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

func (p *UserProfile) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

// MetaStats is a single-row counter table; the first registered profile becomes admin.
type MetaStats struct {
	ID        int   `json:"-" gorm:"primaryKey;autoIncrement:false"`
	UserCount int64 `json:"userCount" gorm:"not null;default:0"`
}

func (MetaStats) TableName() string {
	return "meta_stats"
}

const MetaStatsRowID = 1

func (i *Identity) BeforeCreate(tx *gorm.DB) error {
	if i.Provider == "" {
		i.Provider = AuthProviderPassword
	}
	return i.BaseModel.BeforeCreate(tx)
}
