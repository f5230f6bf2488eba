package model

import "time"

// Profile is the single display record of a user. ID is the owning user's ID.
type Profile struct {
	ID        string    `db:"id"`
	Username  *string   `db:"username"`
	Website   *string   `db:"website"`
	AvatarURL *string   `db:"avatar_url"` // Storage reference, not a resolvable URL
	UpdatedAt time.Time `db:"updated_at"`
}

// Value returns the string behind a nullable column, or "" when unset.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Nullable turns an empty string into a NULL column value.
func Nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
