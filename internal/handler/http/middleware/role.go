package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/response"
)

// RequireRole allows only callers whose token carries one of roles.
// It must run after AuthRequired.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.HandleError(w, user.ErrAdminPrivilegeRequired)
		})
	}
}
