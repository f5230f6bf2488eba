package validation

import (
	"errors"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 100
	MaxWebsiteLength  = 2048
)

// ValidateUsername accepts an empty username (the field is optional).
func ValidateUsername(username string) error {
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return errors.New("username is too long (max 100 characters)")
	}

	for _, r := range username {
		if unicode.IsControl(r) {
			return errors.New("username must not contain control characters")
		}
	}

	return nil
}

// ValidateWebsite accepts an empty value or an absolute http(s) URL.
func ValidateWebsite(website string) error {
	if website == "" {
		return nil
	}

	if len(website) > MaxWebsiteLength {
		return errors.New("website is too long (max 2048 characters)")
	}

	u, err := url.Parse(website)
	if err != nil || u.Host == "" {
		return errors.New("website must be a valid URL")
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return errors.New("website must start with http:// or https://")
	}

	return nil
}
