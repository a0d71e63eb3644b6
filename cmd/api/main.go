package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/leave-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/ratelimit"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/leave-backend-go/internal/repository/postgresql"
	auditService "github.com/cmlabs-hris/leave-backend-go/internal/service/audit"
	serviceAuth "github.com/cmlabs-hris/leave-backend-go/internal/service/auth"
	"github.com/cmlabs-hris/leave-backend-go/internal/service/file"
	invitationService "github.com/cmlabs-hris/leave-backend-go/internal/service/invitation"
	"github.com/cmlabs-hris/leave-backend-go/internal/service/leave"
	userService "github.com/cmlabs-hris/leave-backend-go/internal/service/user"
	"github.com/go-chi/httplog/v3"
)

const appVersion = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "leave-portal"),
		slog.String("version", appVersion),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	userRepo := postgresql.NewUserRepository(db)
	entitlementRepo := postgresql.NewEntitlementRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	inviteRepo := postgresql.NewInviteRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)
	transactor := postgresql.NewTransactor(db)

	recorder := auditService.NewRecorder(auditRepo)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	} else {
		slog.Info("Google sign-in disabled, OAuth settings incomplete")
	}

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath)
		if err != nil {
			return fmt.Errorf("init local storage: %w", err)
		}
	default:
		return fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}
	fileService := file.NewFileService(fileStorage, cfg.Storage.MaxUploadBytes)

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("init email service: %w", err)
	}

	authService := serviceAuth.NewAuthService(transactor, userRepo, inviteRepo, JWTService, recorder)
	entitlementService := leave.NewEntitlementService(transactor, entitlementRepo, userRepo, recorder)
	balanceService := leave.NewBalanceService(entitlementService, leaveRequestRepo)
	requestService := leave.NewRequestService(transactor, entitlementRepo, leaveRequestRepo, fileService, recorder)
	invitationSvc := invitationService.NewInvitationService(inviteRepo, userRepo, emailService, recorder, cfg.Invitation)
	userSvc := userService.NewUserService(userRepo)

	scheduler := cron.NewScheduler()
	cron.NewEntitlementJobs(entitlementService, cfg.Jobs.EntitlementProvisionInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	routerOpts := appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
		AuthRateLimit:  cfg.Redis.AuthLimitPerMinute,
	}
	if cfg.Redis.Addr != "" {
		redisClient, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		routerOpts.Limiter = ratelimit.NewRedisLimiter(redisClient, "leave:ratelimit:")
	} else {
		slog.Info("Rate limiting disabled, REDIS_ADDR not set")
	}

	router := appHTTP.NewRouter(JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authService, googleService, cfg.App.FrontendURL),
		Invitation: appHTTP.NewInvitationHandler(invitationSvc),
		User:       appHTTP.NewUserHandler(userSvc),
		Leave:      appHTTP.NewLeaveHandler(requestService, balanceService, entitlementService, cfg.Storage.MaxUploadBytes),
	}, routerOpts)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
