package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/session"
	"github.com/stretchr/testify/assert"
)

func TestCanMutate(t *testing.T) {
	admin := session.Session{UserID: uuid.New(), Role: models.UserRoleAdmin}
	employee := session.Session{UserID: uuid.New(), Role: models.UserRoleEmployee}
	anonymous := session.Session{}

	tests := []struct {
		action   Action
		employee bool
	}{
		{ActionShiftCreate, false},
		{ActionShiftUpdate, false},
		{ActionShiftDelete, false},
		{ActionShiftAssign, false},
		{ActionShiftBulkCreate, false},
		{ActionShiftClaim, true},
		{ActionShiftRelease, true},
		{ActionTaskCreate, false},
		{ActionTaskUpdate, false},
		{ActionTaskDelete, false},
		{ActionTaskToggle, true},
		{ActionAnnouncementCreate, false},
		{ActionAnnouncementUpdate, false},
		{ActionAnnouncementDelete, false},
		{ActionPhotoUpload, true},
		{ActionPhotoLike, true},
		{ActionPhotoDelete, true},
		{ActionProfileEdit, true},
		{ActionEmployeeUpdate, false},
		{ActionEmployeeDelete, false},
		{ActionEmployeeBackfill, false},
		{ActionAuditRead, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.True(t, CanMutate(admin, tt.action), "admin should be allowed")
			assert.Equal(t, tt.employee, CanMutate(employee, tt.action))
			assert.False(t, CanMutate(anonymous, tt.action), "anonymous should never be allowed")
		})
	}
}

func TestAuthorizeReturnsForbidden(t *testing.T) {
	employee := session.Session{UserID: uuid.New(), Role: models.UserRoleEmployee}
	assert.ErrorIs(t, authorize(employee, ActionShiftCreate), ErrForbidden)
	assert.NoError(t, authorize(employee, ActionShiftClaim))
}
