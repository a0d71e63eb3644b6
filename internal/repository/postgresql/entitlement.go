package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type entitlementRepositoryImpl struct {
	db *database.DB
}

func NewEntitlementRepository(db *database.DB) leave.EntitlementRepository {
	return &entitlementRepositoryImpl{db: db}
}

const entitlementColumns = `id, user_id, year, cl, sl, el, ml, created_at, updated_at`

func scanEntitlement(row pgx.Row) (leave.Entitlement, error) {
	var e leave.Entitlement
	err := row.Scan(
		&e.ID, &e.UserID, &e.Year,
		&e.Quotas.CL, &e.Quotas.SL, &e.Quotas.EL, &e.Quotas.ML,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// EnsureExists implements leave.EntitlementRepository.
func (r *entitlementRepositoryImpl) EnsureExists(ctx context.Context, userID string, year int, quotas leave.Quotas) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO entitlements (user_id, year, cl, sl, el, ml)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, year) DO NOTHING
	`
	if _, err := q.Exec(ctx, query, userID, year, quotas.CL, quotas.SL, quotas.EL, quotas.ML); err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return user.ErrUserNotFound
		}
		return fmt.Errorf("failed to ensure entitlement: %w", err)
	}

	return nil
}

// GetByUserAndYear implements leave.EntitlementRepository.
func (r *entitlementRepositoryImpl) GetByUserAndYear(ctx context.Context, userID string, year int) (leave.Entitlement, error) {
	return r.getByUserAndYear(ctx, userID, year, false)
}

// GetByUserAndYearForUpdate implements leave.EntitlementRepository.
func (r *entitlementRepositoryImpl) GetByUserAndYearForUpdate(ctx context.Context, userID string, year int) (leave.Entitlement, error) {
	return r.getByUserAndYear(ctx, userID, year, true)
}

func (r *entitlementRepositoryImpl) getByUserAndYear(ctx context.Context, userID string, year int, lock bool) (leave.Entitlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + entitlementColumns + ` FROM entitlements WHERE user_id = $1 AND year = $2`
	if lock {
		query += ` FOR UPDATE`
	}

	e, err := scanEntitlement(q.QueryRow(ctx, query, userID, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Entitlement{}, leave.ErrEntitlementNotFound
		}
		return leave.Entitlement{}, fmt.Errorf("failed to get entitlement: %w", err)
	}

	return e, nil
}

// UpdateQuotas implements leave.EntitlementRepository.
func (r *entitlementRepositoryImpl) UpdateQuotas(ctx context.Context, id string, quotas leave.Quotas) (leave.Entitlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE entitlements
		SET cl = $1, sl = $2, el = $3, ml = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + entitlementColumns

	e, err := scanEntitlement(q.QueryRow(ctx, query, quotas.CL, quotas.SL, quotas.EL, quotas.ML, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Entitlement{}, leave.ErrEntitlementNotFound
		}
		return leave.Entitlement{}, fmt.Errorf("failed to update entitlement: %w", err)
	}

	return e, nil
}
