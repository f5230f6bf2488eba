package middleware

import (
	"net/http"
	"strings"

	"github.com/templui/magicprofile/internal/ctxkeys"
)

// SecurityHeaders sets CSP and hardening headers on every response.
// Must run after Config and NonceMiddleware.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy(r))
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		if cfg := ctxkeys.Config(r.Context()); cfg != nil && cfg.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func contentSecurityPolicy(r *http.Request) string {
	scriptSrc := "'self'"
	if nonce := GetNonce(r.Context()); nonce != "" {
		scriptSrc += " 'nonce-" + nonce + "'"
	}

	// Avatars may be served from the object store
	imgSrc := "'self' data: https:"
	if cfg := ctxkeys.Config(r.Context()); cfg != nil && strings.HasPrefix(cfg.S3Endpoint, "http://") {
		imgSrc += " " + cfg.S3Endpoint
	}

	return strings.Join([]string{
		"default-src 'self'",
		"script-src " + scriptSrc,
		"style-src 'self' 'unsafe-inline'",
		"img-src " + imgSrc,
		"form-action 'self'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"object-src 'none'",
	}, "; ")
}
