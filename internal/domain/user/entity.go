package user

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"     // Reviews requests, manages invites and entitlements
	RoleCandidate Role = "candidate" // Submits leave requests
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleCandidate
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
