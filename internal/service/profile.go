package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"

	"github.com/templui/magicprofile/internal/model"
	"github.com/templui/magicprofile/internal/repository"
	"github.com/templui/magicprofile/internal/validation"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	policy      *bluemonday.Policy
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		policy:      bluemonday.StrictPolicy(),
	}
}

// Fetch returns the profile row of a user, model.ErrProfileNotFound if there is none.
func (s *ProfileService) Fetch(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepo.ByUserID(ctx, userID)
	if errors.Is(err, model.ErrProfileNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return profile, nil
}

// Upsert cleans and validates the text fields of profile in place, then writes the full row.
func (s *ProfileService) Upsert(ctx context.Context, profile *model.Profile) error {
	if profile.ID == "" {
		return errors.New("profile id is required")
	}

	username := s.clean(model.Value(profile.Username))
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	website := s.clean(model.Value(profile.Website))
	if err := validation.ValidateWebsite(website); err != nil {
		return err
	}

	profile.Username = model.Nullable(username)
	profile.Website = model.Nullable(website)
	profile.UpdatedAt = profile.UpdatedAt.UTC()

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// clean strips markup and normalises to NFC. The result is plain text,
// so entities produced by the sanitizer are decoded again.
func (s *ProfileService) clean(value string) string {
	value = norm.NFC.String(strings.TrimSpace(value))
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(value)))
}
