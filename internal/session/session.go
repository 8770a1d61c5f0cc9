// Package session carries the authenticated caller through service calls.
package session

import (
	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/models"
)

// Session is built once per request from the resolved profile. Services never
// read roles from anywhere else.
type Session struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
	Role        models.UserRole
}

func FromProfile(p *models.UserProfile) Session {
	return Session{
		UserID:      p.UID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Role:        p.Role,
	}
}

func (s Session) IsAdmin() bool {
	return s.Role == models.UserRoleAdmin
}

func (s Session) Authenticated() bool {
	return s.UserID != uuid.Nil
}
