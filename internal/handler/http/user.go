package http

import (
	"net/http"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/response"
)

type UserHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type userHandlerImpl struct {
	userService user.UserService
}

func NewUserHandler(userService user.UserService) UserHandler {
	return &userHandlerImpl{userService: userService}
}

// List handles GET /admin/users?role=candidate|admin
func (h *userHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	role, err := user.ParseRoleFilter(r.URL.Query().Get("role"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	users, err := h.userService.List(r.Context(), actor, role)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, users, &response.Meta{TotalItems: int64(len(users))})
}
