package auth

import (
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
)

const minPasswordLength = 8

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	}
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RegisterViaInviteRequest struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r *RegisterViaInviteRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Token) {
		errs = append(errs, validator.ValidationError{
			Field:   "token",
			Message: "token is required",
		})
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}

	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	} else if len(r.Password) < minPasswordLength {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TokenResponse struct {
	AccessToken string            `json:"token"`
	ExpiresAt   int64             `json:"expires_at"`
	User        user.UserResponse `json:"user"`
}
