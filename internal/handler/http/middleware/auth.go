package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// AuthRequired rejects requests without a verified access token and stores
// the caller as a user.Actor in the request context.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if token == nil || !jwt.IsAccessToken(claims) {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			actor, err := jwt.ActorFromClaims(claims)
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
		}
		return http.HandlerFunc(hfn)
	}
}

// ActorFromContext returns the caller stored by AuthRequired.
func ActorFromContext(ctx context.Context) (user.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(user.Actor)
	return actor, ok
}
