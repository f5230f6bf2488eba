package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/templui/magicprofile/internal/account"
	"github.com/templui/magicprofile/internal/config"
	"github.com/templui/magicprofile/internal/db"
	"github.com/templui/magicprofile/internal/metrics"
	"github.com/templui/magicprofile/internal/repository"
	"github.com/templui/magicprofile/internal/service"
	"github.com/templui/magicprofile/internal/storage"
)

const registrySweepInterval = time.Minute

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Storage         storage.Storage
	AuthService     *service.AuthService
	ProfileService  *service.ProfileService
	AvatarService   *service.AvatarService
	Gate            *account.Gate
	Registry        *account.Registry
	Metrics         metrics.Recorder
	MetricsRegistry *prometheus.Registry // nil when metrics are disabled

	closers []func()
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.TokenMagicLinkExpiry,
		cfg.IsDevelopment(),
	)

	a, err := Wire(cfg, database, emailService)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

// Wire builds the app on an open, migrated database. Tests use it to
// substitute the mailer.
func Wire(cfg *config.Config, database *sqlx.DB, mailer service.Mailer) (*App, error) {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	sessionRepository := repository.NewSessionRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Services
	authService := service.NewAuthService(
		userRepository,
		tokenRepository,
		sessionRepository,
		mailer,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.SessionExpiry,
		cfg.TokenMagicLinkExpiry,
	)
	profileService := service.NewProfileService(profileRepository)
	avatarService := service.NewAvatarService(fileStorage, cfg.AvatarSize)

	// Metrics
	var recorder metrics.Recorder = metrics.Noop{}
	var metricsRegistry *prometheus.Registry
	if cfg.MetricsEnabled {
		metricsRegistry = prometheus.NewRegistry()
		recorder = metrics.NewCollector(metricsRegistry)
	}

	// Account components share one clock so updated_at stays increasing
	// across every controller of the process.
	clock := account.NewMonotonicClock()
	registry := account.NewRegistry(func(sessionID string) *account.Controller {
		return account.NewController(sessionID, authService, profileService, authService, clock)
	}, cfg.ControllerIdleTTL)

	return &App{
		Cfg:             cfg,
		DB:              database,
		Storage:         fileStorage,
		AuthService:     authService,
		ProfileService:  profileService,
		AvatarService:   avatarService,
		Gate:            account.NewGate(authService),
		Registry:        registry,
		Metrics:         recorder,
		MetricsRegistry: metricsRegistry,
	}, nil
}

// Start runs the background loops until ctx is done.
func (a *App) Start(ctx context.Context) {
	go a.Registry.Run(ctx, registrySweepInterval)
}

// OnClose registers cleanup to run in Close, in reverse order.
func (a *App) OnClose(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *App) Close() error {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil

	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
