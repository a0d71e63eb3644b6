package user

import "time"

// UserResponse represents user data in API responses
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// ParseRoleFilter resolves the ?role= query value, defaulting to candidates.
func ParseRoleFilter(raw string) (Role, error) {
	if raw == "" {
		return RoleCandidate, nil
	}
	role := Role(raw)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}
