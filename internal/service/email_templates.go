package service

import (
	"fmt"
	"time"
)

func magicLinkEmailTemplate(magicURL, appName string, expiry time.Duration) (string, string) {
	subject := fmt.Sprintf("Sign in to %s", appName)
	body := fmt.Sprintf(`Click this link to sign in to your account:
%s

This link expires in %s and can only be used once.

If you didn't request this, ignore this email.

Best,
The %s Team`, magicURL, humanDuration(expiry), appName)

	return subject, body
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		if d == time.Minute {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
