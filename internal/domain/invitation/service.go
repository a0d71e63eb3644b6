package invitation

import (
	"context"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
)

// InvitationService defines the interface for invite management
type InvitationService interface {
	// Create issues a new invite and emails the registration link
	Create(ctx context.Context, actor user.Actor, req CreateInviteRequest) (InviteResponse, error)

	List(ctx context.Context, actor user.Actor) ([]InviteResponse, error)

	// Resend re-sends the existing link of an unused invite
	Resend(ctx context.Context, actor user.Actor, id string) error

	// Revoke marks the invite used so it can no longer be accepted
	Revoke(ctx context.Context, actor user.Actor, id string) error
}
