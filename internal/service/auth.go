package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/blake2b"

	"github.com/templui/magicprofile/internal/model"
	"github.com/templui/magicprofile/internal/repository"
	"github.com/templui/magicprofile/internal/validation"
)

const AuthCookieName = "auth_token"

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidMagicLink = errors.New("invalid or expired magic link")
	ErrInvalidToken     = errors.New("invalid token")
)

var tracer = otel.Tracer("github.com/templui/magicprofile/internal/service")

// SessionClaims is the payload of the auth cookie.
type SessionClaims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

type AuthService struct {
	userRepository       repository.UserRepository
	tokenRepository      repository.TokenRepository
	sessionRepository    repository.SessionRepository
	mailer               Mailer
	jwtSecret            string
	isProduction         bool
	sessionExpiry        time.Duration
	tokenMagicLinkExpiry time.Duration
	now                  func() time.Time
}

func NewAuthService(
	userRepository repository.UserRepository,
	tokenRepository repository.TokenRepository,
	sessionRepository repository.SessionRepository,
	mailer Mailer,
	jwtSecret string,
	isProduction bool,
	sessionExpiry time.Duration,
	tokenMagicLinkExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:       userRepository,
		tokenRepository:      tokenRepository,
		sessionRepository:    sessionRepository,
		mailer:               mailer,
		jwtSecret:            jwtSecret,
		isProduction:         isProduction,
		sessionExpiry:        sessionExpiry,
		tokenMagicLinkExpiry: tokenMagicLinkExpiry,
		now:                  time.Now,
	}
}

func (s *AuthService) GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// HashToken is how magic-link tokens are stored; the raw token only travels by email.
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SendMagicLink handles the combined login/signup flow
// If user exists → sends magic link for login
// If user is new → creates a passwordless account and sends the link
func (s *AuthService) SendMagicLink(ctx context.Context, email string) (err error) {
	ctx, span := tracer.Start(ctx, "AuthService.SendMagicLink")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return ErrInvalidEmail
	}

	user, err := s.userRepository.ByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		user = &model.User{
			ID:        uuid.New().String(),
			Email:     email,
			CreatedAt: s.now().UTC(),
		}
		if err := s.userRepository.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("new passwordless user created", "email", email, "user_id", user.ID)
	} else if err != nil {
		return fmt.Errorf("failed to lookup user: %w", err)
	}

	// Only the most recent link stays valid
	if err := s.tokenRepository.DeleteByUserAndType(ctx, user.ID, model.TokenTypeMagicLink); err != nil {
		slog.Warn("failed to delete old magic link tokens", "error", err, "user_id", user.ID)
	}

	magicToken, err := s.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	token := &model.Token{
		UserID:    user.ID,
		Type:      model.TokenTypeMagicLink,
		TokenHash: HashToken(magicToken),
		ExpiresAt: s.now().UTC().Add(s.tokenMagicLinkExpiry),
	}
	if err := s.tokenRepository.Create(ctx, token); err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	if err := s.mailer.SendMagicLinkEmail(ctx, user.Email, magicToken); err != nil {
		slog.Error("failed to send magic link email", "error", err, "email", user.Email)
		return err
	}

	slog.Info("magic link sent", "email", user.Email)
	return nil
}

// VerifyMagicLink consumes the token and opens a new session for its user.
func (s *AuthService) VerifyMagicLink(ctx context.Context, token string) (*model.User, *model.Session, error) {
	ctx, span := tracer.Start(ctx, "AuthService.VerifyMagicLink")
	defer span.End()

	// ConsumeToken atomically marks token as used
	tokenModel, err := s.tokenRepository.ConsumeToken(ctx, HashToken(token))
	if err != nil {
		if !errors.Is(err, model.ErrTokenNotFound) {
			slog.Error("failed to consume magic link token", "error", err)
		}
		span.SetStatus(codes.Error, "invalid magic link")
		return nil, nil, ErrInvalidMagicLink
	}

	if tokenModel.Type != model.TokenTypeMagicLink {
		return nil, nil, ErrInvalidMagicLink
	}

	user, err := s.userRepository.ByID(ctx, tokenModel.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("user not found: %w", err)
	}

	now := s.now().UTC()
	if user.EmailVerifiedAt == nil {
		user.EmailVerifiedAt = &now
		if err := s.userRepository.Update(ctx, user); err != nil {
			slog.Warn("failed to verify email", "error", err, "user_id", user.ID)
		}
	}

	session := &model.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionExpiry),
		CreatedAt: now,
	}
	if err := s.sessionRepository.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user authenticated via magic link", "user_id", user.ID, "session_id", session.ID)
	return user, session, nil
}

// ResolveSession returns the active session or model.ErrUnauthenticated.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, model.ErrUnauthenticated
	}

	session, err := s.sessionRepository.ByID(ctx, sessionID)
	if errors.Is(err, model.ErrSessionNotFound) {
		return nil, model.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.IsExpired(s.now()) {
		if err := s.sessionRepository.Delete(ctx, session.ID); err != nil && !errors.Is(err, model.ErrSessionNotFound) {
			slog.Warn("failed to delete expired session", "error", err, "session_id", session.ID)
		}
		return nil, model.ErrUnauthenticated
	}

	return session, nil
}

// Authenticate resolves the auth cookie value to its user and live session.
func (s *AuthService) Authenticate(ctx context.Context, cookieValue string) (*model.User, *model.Session, error) {
	claims, err := s.VerifyJWT(cookieValue)
	if err != nil {
		return nil, nil, model.ErrUnauthenticated
	}

	session, err := s.ResolveSession(ctx, claims.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.UserID != claims.UserID {
		return nil, nil, model.ErrUnauthenticated
	}

	user, err := s.userRepository.ByID(ctx, session.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, nil, model.ErrUnauthenticated
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, session, nil
}

// SignOut revokes a session. Signing out of a session that is already gone is not an error.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	err := s.sessionRepository.Delete(ctx, sessionID)
	if err != nil && !errors.Is(err, model.ErrSessionNotFound) {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	slog.Info("session signed out", "session_id", sessionID)
	return nil
}

// Cleanup removes used or expired magic-link tokens older than olderThan and all expired sessions.
func (s *AuthService) Cleanup(ctx context.Context, olderThan time.Duration) (tokens, sessions int64, err error) {
	tokens, err = s.tokenRepository.CleanupExpired(ctx, olderThan)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to clean up tokens: %w", err)
	}
	sessions, err = s.sessionRepository.DeleteExpired(ctx, s.now())
	if err != nil {
		return tokens, 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	return tokens, sessions, nil
}

func (s *AuthService) GenerateJWT(session *model.Session) (string, error) {
	claims := SessionClaims{
		UserID:    session.UserID,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) VerifyJWT(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.UserID == "" || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
