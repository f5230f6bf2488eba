package routes

import (
	"net/http"

	"github.com/templui/magicprofile/internal/app"
	"github.com/templui/magicprofile/internal/handler"
	"github.com/templui/magicprofile/internal/metrics"
	"github.com/templui/magicprofile/internal/middleware"
	"github.com/templui/magicprofile/internal/storage"
	"github.com/templui/magicprofile/internal/telemetry"
	"github.com/templui/magicprofile/internal/validation"
)

const serviceName = "magicprofile"

// maxRequestBody leaves room for form fields next to the largest avatar.
const maxRequestBody = validation.AvatarMaxSize + 1<<20

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	accountHandler := handler.NewAccountHandler(app.Registry, app.AuthService, app.AvatarService, app.Metrics)
	home := handler.NewHomeHandler(accountHandler)
	auth := handler.NewAuthHandler(app.Gate, app.AuthService, app.Registry, app.Metrics)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Uploaded avatars (local storage only, S3 serves its own URLs)
	if local, ok := app.Storage.(*storage.LocalStorage); ok {
		mux.Handle("GET "+storage.LocalURLPrefix, local.Handler())
	}

	// Operations
	mux.HandleFunc("GET /healthz", health.Healthz)
	if app.MetricsRegistry != nil {
		mux.Handle("GET /metrics", metrics.Handler(app.MetricsRegistry))
	}

	// Home: sign-in form or account page
	mux.HandleFunc("GET /{$}", home.HomePage)

	// Auth (rate limited)
	rateLimiter := middleware.NewRateLimiter(app.Cfg.AuthRateLimit, app.Cfg.AuthRateWindow)
	app.OnClose(rateLimiter.Stop)

	mux.HandleFunc("POST /auth/magic-link", rateLimiter.Middleware(auth.SendMagicLink))
	mux.HandleFunc("GET /auth/magic-link/{token}", rateLimiter.Middleware(auth.VerifyMagicLink))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	mux.HandleFunc("POST /account", middleware.RequireAuth(accountHandler.Update))
	mux.HandleFunc("POST /account/avatar", middleware.RequireAuth(accountHandler.UploadAvatar))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		telemetry.Middleware(serviceName, middleware.RouteLabel),
		middleware.Compress,
		middleware.Config(app.Cfg), // Config must precede SecurityHeaders (S3 endpoint for img-src)
		middleware.NonceMiddleware, // Generate CSP nonce for each request (must be before SecurityHeaders)
		middleware.SecurityHeaders, // Security headers for all responses (XSS, clickjacking, etc.)
		middleware.RequestLogging(app.Metrics),
		middleware.LimitBody(maxRequestBody),
		middleware.CSRFProtection, // CSRF protection for all state-changing requests
		middleware.AuthMiddleware(app.AuthService),
		middleware.WithURLPath,
	)

	return handler
}
