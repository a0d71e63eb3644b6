package invitation

import (
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
)

type CreateInviteRequest struct {
	Email string `json:"email"`
}

func (r *CreateInviteRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(validator.NormalizeEmail(r.Email)) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type InviteResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	Link      string    `json:"link"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	Expired   bool      `json:"expired"`
	CreatedAt time.Time `json:"created_at"`
}

func NewInviteResponse(i Invite, link string, now time.Time) InviteResponse {
	return InviteResponse{
		ID:        i.ID,
		Email:     i.Email,
		Token:     i.Token,
		Link:      link,
		ExpiresAt: i.ExpiresAt,
		Used:      i.Used,
		Expired:   i.IsExpired(now),
		CreatedAt: i.CreatedAt,
	}
}
