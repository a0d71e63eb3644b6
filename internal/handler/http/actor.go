package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
)

// requireActor returns the authenticated caller or writes a 401.
func requireActor(w http.ResponseWriter, r *http.Request) (user.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrInvalidToken)
		return user.Actor{}, false
	}
	return actor, true
}

// parseYear reads ?year=, defaulting to the current year.
func parseYear(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || !validator.IsValidYear(year) {
		return 0, validator.ValidationErrors{{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		}}
	}
	return year, nil
}
