package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
)

// TestDatabaseSetup wraps the integration test database
type TestDatabaseSetup struct {
	DB *database.DB
}

var (
	sharedSetup    *TestDatabaseSetup
	sharedSetupErr error
	setupOnce      sync.Once
)

// ErrNoTestDatabase is returned when TEST_DATABASE_URL is not set.
var ErrNoTestDatabase = fmt.Errorf("TEST_DATABASE_URL is not set")

// NewTestDatabase connects to TEST_DATABASE_URL once and applies migrations.
func NewTestDatabase() (*TestDatabaseSetup, error) {
	setupOnce.Do(func() {
		dsn := os.Getenv("TEST_DATABASE_URL")
		if dsn == "" {
			sharedSetupErr = ErrNoTestDatabase
			return
		}

		ctx := context.Background()
		db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 10})
		if err != nil {
			sharedSetupErr = fmt.Errorf("failed to connect to test database: %w", err)
			return
		}
		if err := db.Migrate(ctx); err != nil {
			sharedSetupErr = fmt.Errorf("failed to migrate test database: %w", err)
			return
		}
		sharedSetup = &TestDatabaseSetup{DB: db}
	})
	return sharedSetup, sharedSetupErr
}

// TruncateAllTables removes all rows from every application table
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	_, err := t.DB.Exec(ctx, `TRUNCATE TABLE audit_log, leave_requests, entitlements, invites, users CASCADE`)
	if err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
