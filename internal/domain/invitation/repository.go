package invitation

import "context"

// InviteRepository - interface for invites table
type InviteRepository interface {
	Create(ctx context.Context, invite Invite) (Invite, error)
	GetByID(ctx context.Context, id string) (Invite, error)
	// GetByTokenForUpdate locks the invite until the surrounding transaction ends.
	GetByTokenForUpdate(ctx context.Context, token string) (Invite, error)
	List(ctx context.Context) ([]Invite, error)
	MarkUsed(ctx context.Context, id string) error
}
