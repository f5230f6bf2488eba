package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret            string
	SessionExpiry        time.Duration
	TokenMagicLinkExpiry time.Duration
	AuthRateLimit        int
	AuthRateWindow       time.Duration

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN      string
	OTLPEndpoint   string
	MetricsEnabled bool

	// Profile editor
	ControllerIdleTTL time.Duration
	AvatarSize        int

	// Storage: "local" writes below UploadDir, "s3" uses any S3-compatible service
	StorageDriver         string
	UploadDir             string
	S3Region              string
	S3Bucket              string
	S3AccessKey           string
	S3SecretKey           string
	S3Endpoint            string        // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3PresignExpiryPublic time.Duration // Expiry for avatar URLs - default: 7 days
}

// Load reads the config and exits the process when it is incomplete.
func Load() *Config {
	cfg, err := Parse()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// Parse reads .env (if present) and the environment.
func Parse() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	var missing []string
	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Acme"),
		AppEnv:  envRequired("APP_ENV", &missing), // Required: 'development' or 'production'
		AppURL:  strings.TrimSuffix(envRequired("APP_URL", &missing), "/"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/profile.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret:            envRequired("JWT_SECRET", &missing),
		SessionExpiry:        envDuration("SESSION_EXPIRY", 168*time.Hour),           // 7 days
		TokenMagicLinkExpiry: envDuration("TOKEN_MAGIC_LINK_EXPIRY", 10*time.Minute), // 10 minutes
		AuthRateLimit:        envInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow:       envDuration("AUTH_RATE_WINDOW", 15*time.Minute),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN:      envString("SENTRY_DSN", ""),
		OTLPEndpoint:   envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		MetricsEnabled: envBool("METRICS_ENABLED", true),

		ControllerIdleTTL: envDuration("CONTROLLER_IDLE_TTL", 30*time.Minute),
		AvatarSize:        envInt("AVATAR_SIZE", 150),

		// Storage
		StorageDriver:         envString("STORAGE_DRIVER", "local"),
		UploadDir:             envString("UPLOAD_DIR", "./data/uploads"),
		S3Region:              envString("S3_REGION", ""),
		S3Bucket:              envString("S3_BUCKET", ""),
		S3AccessKey:           envString("S3_ACCESS_KEY", ""),
		S3SecretKey:           envString("S3_SECRET_KEY", ""),
		S3Endpoint:            envString("S3_ENDPOINT", ""),
		S3PresignExpiryPublic: envDuration("S3_PRESIGN_EXPIRY_PUBLIC", 168*time.Hour),
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required env vars missing: %s", strings.Join(missing, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks combinations that single env helpers cannot.
// Development allows email to fall back to log mode for local testing.
func (c *Config) validate() error {
	var errs []error

	if c.AppEnv != "development" && c.AppEnv != "production" {
		errs = append(errs, fmt.Errorf("APP_ENV must be development or production, got %q", c.AppEnv))
	}
	if c.IsProduction() && c.ResendAPIKey == "" {
		errs = append(errs, errors.New("production deployment requires RESEND_API_KEY"))
	}

	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.S3Region == "" || c.S3Bucket == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
			errs = append(errs, errors.New("STORAGE_DRIVER=s3 requires S3_REGION, S3_BUCKET, S3_ACCESS_KEY and S3_SECRET_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	return errors.Join(errs...)
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("config invalid positive int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string, missing *[]string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	*missing = append(*missing, key)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) UsesS3() bool {
	return c.StorageDriver == "s3"
}

// Sanitized returns a copy of the config with only public/safe fields.
// Safe to expose in ctx and templates.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:       c.AppName,
		AppEnv:        c.AppEnv,
		AppURL:        c.AppURL,
		Port:          c.Port,
		EmailFrom:     c.EmailFrom,
		AvatarSize:    c.AvatarSize,
		StorageDriver: c.StorageDriver,
		S3Endpoint:    c.S3Endpoint, // Needed for CSP policies
	}
}
