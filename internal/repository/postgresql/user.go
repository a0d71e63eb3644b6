package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, name, email, password_hash, role, created_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query, newUser.Name, newUser.Email, newUser.PasswordHash, newUser.Role))
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(q.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return u, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return u, nil
}

// ExistsByEmail implements user.UserRepository.
func (r *userRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user email: %w", err)
	}

	return exists, nil
}

// ListByRole implements user.UserRepository.
func (r *userRepositoryImpl) ListByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
