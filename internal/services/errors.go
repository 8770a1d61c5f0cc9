package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrInvalidInput       = errors.New("invalid input")
	ErrShiftNotOpen       = errors.New("shift is not open")
	ErrShiftNotAssigned   = errors.New("shift is not assigned to this user")
	ErrShiftInPast        = errors.New("shift date is in the past")
	ErrConflict           = errors.New("shift was modified concurrently")
	ErrSelfDelete         = errors.New("cannot delete your own profile")
	ErrSelfRoleChange     = errors.New("cannot change your own role or active flag")
	ErrBootstrapProtected = errors.New("the bootstrap administrator cannot be changed")
	ErrAccountDisabled    = errors.New("account is disabled")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
