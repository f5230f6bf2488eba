package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// Mailer delivers sign-in links. EmailService is the production implementation.
type Mailer interface {
	SendMagicLinkEmail(ctx context.Context, email, token string) error
}

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
	linkTTL   time.Duration
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, linkTTL time.Duration, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
		linkTTL:   linkTTL,
	}
}

// MagicLinkURL is the link a user follows to sign in.
func (s *EmailService) MagicLinkURL(token string) string {
	return fmt.Sprintf("%s/auth/magic-link/%s", s.appURL, token)
}

// SendMagicLinkEmail sends the link via Resend. In development the link is logged instead.
func (s *EmailService) SendMagicLinkEmail(ctx context.Context, email, token string) error {
	magicURL := s.MagicLinkURL(token)
	subject, body := magicLinkEmailTemplate(magicURL, s.appName, s.linkTTL)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "magic_link", "to", email, "subject", subject, "url", magicURL)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("email sent", "type", "magic_link", "to", email)
	return nil
}
