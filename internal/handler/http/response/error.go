package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/invitation"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrOAuthStateMismatch),
		errors.Is(err, auth.ErrOAuthEmailUnverified):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, auth.ErrNoAccountForEmail):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrOAuthNotConfigured):
		NotFound(w, err.Error())
	case errors.Is(err, auth.ErrTooManyRequests):
		TooManyRequests(w, "Too many requests, please try again later")

	// User domain errors
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrInvalidRole):
		BadRequest(w, "Invalid role", nil)

	// Invitation domain errors
	case errors.Is(err, invitation.ErrInviteNotFound),
		errors.Is(err, invitation.ErrInvalidInviteToken):
		NotFound(w, err.Error())
	case errors.Is(err, invitation.ErrInviteAlreadyUsed),
		errors.Is(err, invitation.ErrInviteExpired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, invitation.ErrEmailAlreadyRegistered):
		Conflict(w, err.Error())

	// Leave domain errors
	case errors.Is(err, leave.ErrInvalidCategory),
		errors.Is(err, leave.ErrInvalidRange),
		errors.Is(err, leave.ErrZeroDuration),
		errors.Is(err, leave.ErrDocumentRequired),
		errors.Is(err, leave.ErrInsufficientBalance),
		errors.Is(err, leave.ErrCommentRequired),
		errors.Is(err, leave.ErrUnsupportedDocument),
		errors.Is(err, leave.ErrDocumentTooLarge):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrInvalidState):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrDocumentNotFound):
		NotFound(w, "Document not found")
	case errors.Is(err, leave.ErrEntitlementNotFound):
		NotFound(w, "Entitlement not found")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
