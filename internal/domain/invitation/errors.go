package invitation

import "errors"

var (
	ErrInviteNotFound         = errors.New("invite not found")
	ErrInvalidInviteToken     = errors.New("invalid invite token")
	ErrInviteAlreadyUsed      = errors.New("invite already used")
	ErrInviteExpired          = errors.New("invite expired")
	ErrEmailAlreadyRegistered = errors.New("user already exists for this email")
)
