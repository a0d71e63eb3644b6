package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/leave-backend-go/internal/config"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/leave-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/leave-backend-go/internal/service/auth"
)

// seed creates the initial admin account from SEED_ADMIN_* if it is missing.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := run(context.Background()); err != nil {
		slog.Error("Seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	email := validator.NormalizeEmail(cfg.Seed.AdminEmail)
	if email == "" || cfg.Seed.AdminPassword == "" {
		return errors.New("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: 2})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	userRepo := postgresql.NewUserRepository(db)

	existing, err := userRepo.GetByEmail(ctx, email)
	if err == nil {
		slog.Info("Admin already exists, nothing to do", "email", existing.Email, "role", existing.Role)
		return nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := serviceAuth.HashPassword(cfg.Seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin, err := userRepo.Create(ctx, user.User{
		Name:         cfg.Seed.AdminName,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	slog.Info("Admin created", "id", admin.ID, "email", admin.Email)
	return nil
}
