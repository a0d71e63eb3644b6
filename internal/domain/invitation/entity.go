package invitation

import "time"

// Invite is a single-use, time-limited registration token sent to an email
// address. Used becomes true once it is accepted or revoked and never reverts.
type Invite struct {
	ID               string
	Email            string
	Token            string
	ExpiresAt        time.Time
	Used             bool
	CreatedByAdminID *string
	CreatedAt        time.Time
}

// IsExpired checks if the invite has expired at now
func (i *Invite) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// CanBeAccepted reports the first reason the invite cannot be consumed, or nil.
func (i *Invite) CanBeAccepted(now time.Time) error {
	if i.Used {
		return ErrInviteAlreadyUsed
	}
	if i.IsExpired(now) {
		return ErrInviteExpired
	}
	return nil
}
