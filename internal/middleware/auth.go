package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/magicprofile/internal/ctxkeys"
	"github.com/templui/magicprofile/internal/model"
	"github.com/templui/magicprofile/internal/service"
)

// Authenticator resolves the auth cookie to a user and a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, cookieValue string) (*model.User, *model.Session, error)
	ClearJWTCookie(w http.ResponseWriter)
}

// AuthMiddleware adds user + session to the context when the auth cookie is valid
// and its session has not been revoked or expired.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.AuthCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, session, err := auth.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, model.ErrUnauthenticated) {
					slog.Error("failed to authenticate request", "error", err, "path", r.URL.Path)
				}
				auth.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithSession(ctx, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth sends guests back to the sign-in page
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Session(r.Context()) == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}
