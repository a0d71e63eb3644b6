package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/invitation"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type inviteRepositoryImpl struct {
	db *database.DB
}

// NewInviteRepository creates a new invite repository instance
func NewInviteRepository(db *database.DB) invitation.InviteRepository {
	return &inviteRepositoryImpl{db: db}
}

const inviteColumns = `id, email, token, expires_at, used, created_by_admin_id, created_at`

func scanInvite(row pgx.Row) (invitation.Invite, error) {
	var inv invitation.Invite
	err := row.Scan(&inv.ID, &inv.Email, &inv.Token, &inv.ExpiresAt, &inv.Used, &inv.CreatedByAdminID, &inv.CreatedAt)
	return inv, err
}

// Create implements invitation.InviteRepository.
func (r *inviteRepositoryImpl) Create(ctx context.Context, inv invitation.Invite) (invitation.Invite, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO invites (email, token, expires_at, created_by_admin_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + inviteColumns

	created, err := scanInvite(q.QueryRow(ctx, query, inv.Email, inv.Token, inv.ExpiresAt, inv.CreatedByAdminID))
	if err != nil {
		return invitation.Invite{}, fmt.Errorf("failed to create invite: %w", err)
	}

	return created, nil
}

// GetByID implements invitation.InviteRepository.
func (r *inviteRepositoryImpl) GetByID(ctx context.Context, id string) (invitation.Invite, error) {
	q := GetQuerier(ctx, r.db)

	inv, err := scanInvite(q.QueryRow(ctx, `SELECT `+inviteColumns+` FROM invites WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return invitation.Invite{}, invitation.ErrInviteNotFound
		}
		return invitation.Invite{}, fmt.Errorf("failed to get invite: %w", err)
	}

	return inv, nil
}

// GetByTokenForUpdate implements invitation.InviteRepository.
func (r *inviteRepositoryImpl) GetByTokenForUpdate(ctx context.Context, token string) (invitation.Invite, error) {
	q := GetQuerier(ctx, r.db)

	inv, err := scanInvite(q.QueryRow(ctx, `SELECT `+inviteColumns+` FROM invites WHERE token = $1 FOR UPDATE`, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return invitation.Invite{}, invitation.ErrInvalidInviteToken
		}
		return invitation.Invite{}, fmt.Errorf("failed to get invite by token: %w", err)
	}

	return inv, nil
}

// List implements invitation.InviteRepository.
func (r *inviteRepositoryImpl) List(ctx context.Context) ([]invitation.Invite, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+inviteColumns+` FROM invites ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	invites := []invitation.Invite{}
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, inv)
	}

	return invites, rows.Err()
}

// MarkUsed implements invitation.InviteRepository.
func (r *inviteRepositoryImpl) MarkUsed(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE invites SET used = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark invite used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return invitation.ErrInviteNotFound
	}

	return nil
}
