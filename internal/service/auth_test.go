package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/templui/magicprofile/internal/db/dbtest"
	"github.com/templui/magicprofile/internal/model"
	"github.com/templui/magicprofile/internal/repository"
)

type captureMailer struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
}

func (m *captureMailer) SendMagicLinkEmail(ctx context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.tokens == nil {
		m.tokens = make(map[string]string)
	}
	m.tokens[email] = token
	return nil
}

func (m *captureMailer) token(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

func newAuthService(t *testing.T) (*AuthService, *captureMailer, *sqlx.DB) {
	t.Helper()
	database := dbtest.Open(t)
	mailer := &captureMailer{}
	svc := NewAuthService(
		repository.NewUserRepository(database),
		repository.NewTokenRepository(database),
		repository.NewSessionRepository(database),
		mailer,
		"test-secret",
		false,
		time.Hour,
		10*time.Minute,
	)
	return svc, mailer, database
}

func TestAuthService_MagicLinkFlow(t *testing.T) {
	svc, mailer, database := newAuthService(t)
	ctx := context.Background()

	if err := svc.SendMagicLink(ctx, "  Alice@Example.com "); err != nil {
		t.Fatalf("SendMagicLink: %v", err)
	}
	token := mailer.token("alice@example.com")
	if token == "" {
		t.Fatal("no link mailed to normalised address")
	}

	var stored string
	if err := database.Get(&stored, `SELECT token_hash FROM tokens`); err != nil {
		t.Fatalf("select token: %v", err)
	}
	if stored == token || stored != HashToken(token) {
		t.Errorf("stored token %q is not the hash of the mailed token", stored)
	}

	user, session, err := svc.VerifyMagicLink(ctx, token)
	if err != nil {
		t.Fatalf("VerifyMagicLink: %v", err)
	}
	if user.Email != "alice@example.com" || !user.IsVerified() {
		t.Errorf("user = %+v, want verified alice", user)
	}
	if session.UserID != user.ID {
		t.Errorf("session user = %q, want %q", session.UserID, user.ID)
	}

	if _, _, err := svc.VerifyMagicLink(ctx, token); !errors.Is(err, ErrInvalidMagicLink) {
		t.Errorf("second VerifyMagicLink err = %v, want ErrInvalidMagicLink", err)
	}

	resolved, err := svc.ResolveSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("ResolveSession: %v", err)
	}
	if resolved.UserID != user.ID {
		t.Errorf("resolved user = %q", resolved.UserID)
	}
}

func TestAuthService_ExistingUserIsReused(t *testing.T) {
	svc, _, database := newAuthService(t)
	ctx := context.Background()

	_ = svc.SendMagicLink(ctx, "alice@example.com")
	_ = svc.SendMagicLink(ctx, "ALICE@example.com")

	var users int
	if err := database.Get(&users, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatal(err)
	}
	if users != 1 {
		t.Errorf("users = %d, want 1", users)
	}
}

func TestAuthService_NewLinkRevokesOld(t *testing.T) {
	svc, mailer, _ := newAuthService(t)
	ctx := context.Background()

	_ = svc.SendMagicLink(ctx, "alice@example.com")
	first := mailer.token("alice@example.com")
	_ = svc.SendMagicLink(ctx, "alice@example.com")
	second := mailer.token("alice@example.com")

	if _, _, err := svc.VerifyMagicLink(ctx, first); !errors.Is(err, ErrInvalidMagicLink) {
		t.Errorf("old link err = %v, want ErrInvalidMagicLink", err)
	}
	if _, _, err := svc.VerifyMagicLink(ctx, second); err != nil {
		t.Errorf("new link: %v", err)
	}
}

func TestAuthService_SendMagicLinkErrors(t *testing.T) {
	svc, mailer, _ := newAuthService(t)
	ctx := context.Background()

	if err := svc.SendMagicLink(ctx, "not-an-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("err = %v, want ErrInvalidEmail", err)
	}
	if len(mailer.tokens) != 0 {
		t.Error("mail sent for invalid address")
	}

	mailer.err = errors.New("resend unavailable")
	if err := svc.SendMagicLink(ctx, "bob@example.com"); err == nil || err.Error() != "resend unavailable" {
		t.Errorf("err = %v, want mailer error", err)
	}
}

func TestAuthService_ResolveSession(t *testing.T) {
	svc, mailer, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.ResolveSession(ctx, ""); !errors.Is(err, model.ErrUnauthenticated) {
		t.Errorf("empty id err = %v", err)
	}
	if _, err := svc.ResolveSession(ctx, "missing"); !errors.Is(err, model.ErrUnauthenticated) {
		t.Errorf("missing id err = %v", err)
	}

	_ = svc.SendMagicLink(ctx, "alice@example.com")
	_, session, err := svc.VerifyMagicLink(ctx, mailer.token("alice@example.com"))
	if err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.ResolveSession(ctx, session.ID); !errors.Is(err, model.ErrUnauthenticated) {
		t.Errorf("expired session err = %v, want ErrUnauthenticated", err)
	}
}

func TestAuthService_SignOut(t *testing.T) {
	svc, mailer, _ := newAuthService(t)
	ctx := context.Background()

	_ = svc.SendMagicLink(ctx, "alice@example.com")
	_, session, err := svc.VerifyMagicLink(ctx, mailer.token("alice@example.com"))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.SignOut(ctx, session.ID); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := svc.ResolveSession(ctx, session.ID); !errors.Is(err, model.ErrUnauthenticated) {
		t.Errorf("after sign out err = %v, want ErrUnauthenticated", err)
	}
	if err := svc.SignOut(ctx, session.ID); err != nil {
		t.Errorf("second SignOut: %v", err)
	}
}

func TestAuthService_AuthenticateCookie(t *testing.T) {
	svc, mailer, _ := newAuthService(t)
	ctx := context.Background()

	_ = svc.SendMagicLink(ctx, "alice@example.com")
	user, session, err := svc.VerifyMagicLink(ctx, mailer.token("alice@example.com"))
	if err != nil {
		t.Fatal(err)
	}

	jwtToken, err := svc.GenerateJWT(session)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	gotUser, gotSession, err := svc.Authenticate(ctx, jwtToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if gotUser.ID != user.ID || gotSession.ID != session.ID {
		t.Errorf("Authenticate = %s/%s, want %s/%s", gotUser.ID, gotSession.ID, user.ID, session.ID)
	}

	if _, _, err := svc.Authenticate(ctx, jwtToken+"x"); !errors.Is(err, model.ErrUnauthenticated) {
		t.Errorf("tampered token err = %v", err)
	}

	other := *svc
	other.jwtSecret = "other-secret"
	if _, err := other.VerifyJWT(jwtToken); err == nil {
		t.Error("token verified with wrong secret")
	}

	_ = svc.SignOut(ctx, session.ID)
	if _, _, err := svc.Authenticate(ctx, jwtToken); !errors.Is(err, model.ErrUnauthenticated) {
		t.Errorf("revoked session err = %v, want ErrUnauthenticated", err)
	}
}

func TestAuthService_Cookies(t *testing.T) {
	svc, _, _ := newAuthService(t)

	rec := httptest.NewRecorder()
	svc.SetJWTCookie(rec, "value", time.Now().Add(time.Hour))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != AuthCookieName || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}

	rec = httptest.NewRecorder()
	svc.ClearJWTCookie(rec)
	cookies = rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "" || cookies[0].MaxAge >= 0 {
		t.Errorf("clear cookie = %+v", cookies)
	}
}

func TestAuthService_Cleanup(t *testing.T) {
	svc, mailer, _ := newAuthService(t)
	ctx := context.Background()

	_ = svc.SendMagicLink(ctx, "alice@example.com")
	if _, _, err := svc.VerifyMagicLink(ctx, mailer.token("alice@example.com")); err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	tokens, sessions, err := svc.Cleanup(ctx, 0)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if tokens != 1 || sessions != 1 {
		t.Errorf("cleaned tokens=%d sessions=%d, want 1 and 1", tokens, sessions)
	}
}
