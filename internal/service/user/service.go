package user

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
)

type UserServiceImpl struct {
	user.UserRepository
}

func NewUserService(userRepository user.UserRepository) user.UserService {
	return &UserServiceImpl{UserRepository: userRepository}
}

// List returns users with the given role, newest first.
func (s *UserServiceImpl) List(ctx context.Context, actor user.Actor, role user.Role) ([]user.UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, user.ErrAdminPrivilegeRequired
	}
	if !role.IsValid() {
		return nil, user.ErrInvalidRole
	}

	users, err := s.UserRepository.ListByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, user.NewUserResponse(u))
	}
	return responses, nil
}
