package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
)

func AdminOnly(next http.Handler) http.Handler {
	return RequireRole(user.RoleAdmin)(next)
}
