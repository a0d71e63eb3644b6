package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	SMTP         SMTPConfig
	Storage      StorageConfig
	Invitation   InvitationConfig
	Redis        RedisConfig
	Seed         SeedConfig
	Jobs         JobsConfig
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	AutoMigrate bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	FrontendURL    string
	AllowedOrigins []string
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether every Google sign-in setting is present.
func (c OAuth2GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != "" && len(c.Scopes) > 0
}

// SMTPConfig holds outgoing mail settings. An empty Host disables sending.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type StorageConfig struct {
	Type           string
	BasePath       string
	MaxUploadBytes int64
}

type InvitationConfig struct {
	Expiry  time.Duration
	BaseURL string
}

// RedisConfig holds the rate limiter backend. An empty Addr disables rate limiting.
type RedisConfig struct {
	Addr               string
	Password           string
	DB                 int
	AuthLimitPerMinute int
}

type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

type JobsConfig struct {
	EntitlementProvisionInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "leave_portal"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MaxConns:    int32(maxConns),
		MinConns:    int32(minConns),
		AutoMigrate: autoMigrate,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	frontendURL := strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/")
	allowedOrigins := getEnvSlice("CORS_ALLOWED_ORIGINS")
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{frontendURL}
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		FrontendURL:    frontendURL,
		AllowedOrigins: allowedOrigins,
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// OAuth2 Google Configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
		Scopes:       getEnvSlice("SCOPES"),
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@leave-portal.local"),
		FromName: getEnv("SMTP_FROM_NAME", "Leave Portal"),
	}

	// Storage configuration
	maxUpload, err := strconv.ParseInt(getEnv("STORAGE_MAX_UPLOAD_BYTES", "5242880"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_MAX_UPLOAD_BYTES: %w", err)
	}
	config.Storage = StorageConfig{
		Type:           getEnv("STORAGE_TYPE", "local"),
		BasePath:       getEnv("STORAGE_BASE_PATH", "./uploads"),
		MaxUploadBytes: maxUpload,
	}

	// Invitation configuration
	inviteExpiry, err := time.ParseDuration(getEnv("INVITATION_EXPIRY", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid INVITATION_EXPIRY: %w", err)
	}
	config.Invitation = InvitationConfig{
		Expiry:  inviteExpiry,
		BaseURL: getEnv("INVITATION_BASE_URL", frontendURL+"/register"),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	authLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_AUTH_PER_MINUTE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_AUTH_PER_MINUTE: %w", err)
	}
	config.Redis = RedisConfig{
		Addr:               getEnv("REDIS_ADDR", ""),
		Password:           getEnv("REDIS_PASSWORD", ""),
		DB:                 redisDB,
		AuthLimitPerMinute: authLimit,
	}

	config.Seed = SeedConfig{
		AdminName:     getEnv("SEED_ADMIN_NAME", "Administrator"),
		AdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
		AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
	}

	provisionInterval, err := time.ParseDuration(getEnv("ENTITLEMENT_PROVISION_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENTITLEMENT_PROVISION_INTERVAL: %w", err)
	}
	config.Jobs = JobsConfig{EntitlementProvisionInterval: provisionInterval}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_BYTES must be positive")
	}
	if c.Invitation.Expiry <= 0 {
		return fmt.Errorf("INVITATION_EXPIRY must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
