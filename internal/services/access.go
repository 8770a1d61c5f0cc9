package services

import "github.com/hospoda/shiftboard/internal/session"

// Action names a mutation subject to the role gate.
type Action string

const (
	ActionShiftCreate     Action = "shift.create"
	ActionShiftUpdate     Action = "shift.update"
	ActionShiftDelete     Action = "shift.delete"
	ActionShiftAssign     Action = "shift.assign"
	ActionShiftBulkCreate Action = "shift.bulk_create"
	ActionShiftClaim      Action = "shift.claim"
	ActionShiftRelease    Action = "shift.release"

	ActionTaskCreate Action = "task.create"
	ActionTaskUpdate Action = "task.update"
	ActionTaskDelete Action = "task.delete"
	ActionTaskToggle Action = "task.toggle"

	ActionAnnouncementCreate Action = "announcement.create"
	ActionAnnouncementUpdate Action = "announcement.update"
	ActionAnnouncementDelete Action = "announcement.delete"

	ActionPhotoUpload Action = "photo.upload"
	ActionPhotoLike   Action = "photo.like"
	ActionPhotoDelete Action = "photo.delete"

	ActionProfileEdit      Action = "profile.update"
	ActionEmployeeUpdate   Action = "employee.update"
	ActionEmployeeDelete   Action = "employee.delete"
	ActionEmployeeBackfill Action = "employee.backfill"
	ActionAuditRead        Action = "audit.read"
)

// memberActions are open to every authenticated profile. State checks such as
// "only your own shift" or "only your own photo" happen in the service itself.
var memberActions = map[Action]bool{
	ActionShiftClaim:   true,
	ActionShiftRelease: true,
	ActionTaskToggle:   true,
	ActionPhotoUpload:  true,
	ActionPhotoLike:    true,
	ActionPhotoDelete:  true,
	ActionProfileEdit:  true,
}

// CanMutate is the role gate. Admins may do anything; employees only the
// member actions.
func CanMutate(s session.Session, action Action) bool {
	if !s.Authenticated() {
		return false
	}
	if s.IsAdmin() {
		return true
	}
	return memberActions[action]
}

func authorize(s session.Session, action Action) error {
	if !CanMutate(s, action) {
		return ErrForbidden
	}
	return nil
}
