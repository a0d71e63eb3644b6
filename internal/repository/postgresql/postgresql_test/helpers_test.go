package postgresql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// setupTestDB skips the test when no integration database is configured and
// otherwise returns a clean database.
func setupTestDB(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	setup, err := NewTestDatabase()
	if errors.Is(err, ErrNoTestDatabase) {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	require.NoError(t, err)
	require.NoError(t, setup.TruncateAllTables(context.Background()))
	return setup
}

func createTestUser(t *testing.T, setup *TestDatabaseSetup, email string, role user.Role) user.User {
	t.Helper()

	created, err := postgresql.NewUserRepository(setup.DB).Create(context.Background(), user.User{
		Name:         "Test " + string(role),
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuu5Q0b3hW4i2m3R3x8L1O7aV0oQ9y2m6",
		Role:         role,
	})
	require.NoError(t, err)
	return created
}
