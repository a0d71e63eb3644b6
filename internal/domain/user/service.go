package user

import "context"

type UserService interface {
	List(ctx context.Context, actor Actor, role Role) ([]UserResponse, error)
}
