package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/magicprofile/internal/model"
)

type ProfileRepository interface {
	ByUserID(ctx context.Context, userID string) (*model.Profile, error)
	Upsert(ctx context.Context, profile *model.Profile) error
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// ByUserID returns the single profile row of a user.
// Only an empty result maps to ErrProfileNotFound; any other failure is returned as is.
func (r *profileRepository) ByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, `
		SELECT id, username, website, avatar_url, updated_at
		FROM profiles
		WHERE id = $1
	`, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// Upsert writes the full record keyed on id. Writing the same record twice keeps one row.
func (r *profileRepository) Upsert(ctx context.Context, profile *model.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, username, website, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			website = excluded.website,
			avatar_url = excluded.avatar_url,
			updated_at = excluded.updated_at
	`, profile.ID, profile.Username, profile.Website, profile.AvatarURL, profile.UpdatedAt)

	return err
}
