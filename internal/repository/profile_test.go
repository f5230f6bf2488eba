package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/templui/magicprofile/internal/db/dbtest"
	"github.com/templui/magicprofile/internal/model"
)

func createUser(t *testing.T, users UserRepository, id, email string) {
	t.Helper()
	err := users.Create(context.Background(), &model.User{
		ID:        id,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func TestProfileRepository_ByUserID_NoRow(t *testing.T) {
	database := dbtest.Open(t)
	repo := NewProfileRepository(database)

	_, err := repo.ByUserID(context.Background(), "missing")
	if !errors.Is(err, model.ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
}

func TestProfileRepository_UpsertRoundTrip(t *testing.T) {
	database := dbtest.Open(t)
	createUser(t, NewUserRepository(database), "user-1", "alice@example.com")
	repo := NewProfileRepository(database)
	ctx := context.Background()

	written := time.Now().UTC().Truncate(time.Microsecond)
	err := repo.Upsert(ctx, &model.Profile{
		ID:        "user-1",
		Username:  model.Nullable("alice"),
		Website:   model.Nullable("https://a.example"),
		AvatarURL: model.Nullable("ref1"),
		UpdatedAt: written,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.ByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("ByUserID: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("ID = %q, want %q", got.ID, "user-1")
	}
	if model.Value(got.Username) != "alice" {
		t.Errorf("Username = %q, want %q", model.Value(got.Username), "alice")
	}
	if model.Value(got.Website) != "https://a.example" {
		t.Errorf("Website = %q, want %q", model.Value(got.Website), "https://a.example")
	}
	if model.Value(got.AvatarURL) != "ref1" {
		t.Errorf("AvatarURL = %q, want %q", model.Value(got.AvatarURL), "ref1")
	}
	if got.UpdatedAt.Before(written) {
		t.Errorf("UpdatedAt = %v, want >= %v", got.UpdatedAt, written)
	}
}

func TestProfileRepository_UpsertIsIdempotent(t *testing.T) {
	database := dbtest.Open(t)
	createUser(t, NewUserRepository(database), "user-1", "alice@example.com")
	repo := NewProfileRepository(database)
	ctx := context.Background()

	first := time.Now().UTC().Truncate(time.Microsecond)
	second := first.Add(time.Millisecond)
	for _, stamp := range []time.Time{first, second} {
		err := repo.Upsert(ctx, &model.Profile{
			ID:        "user-1",
			Username:  model.Nullable("alice"),
			UpdatedAt: stamp,
		})
		if err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	var rows int
	err := database.Get(&rows, `SELECT COUNT(*) FROM profiles WHERE id = $1`, "user-1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows = %d, want 1", rows)
	}

	got, err := repo.ByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("ByUserID: %v", err)
	}
	if !got.UpdatedAt.Equal(second) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, second)
	}
}

func TestProfileRepository_UpsertClearsFields(t *testing.T) {
	database := dbtest.Open(t)
	createUser(t, NewUserRepository(database), "user-1", "alice@example.com")
	repo := NewProfileRepository(database)
	ctx := context.Background()

	now := time.Now().UTC()
	_ = repo.Upsert(ctx, &model.Profile{ID: "user-1", Username: model.Nullable("alice"), UpdatedAt: now})
	err := repo.Upsert(ctx, &model.Profile{ID: "user-1", UpdatedAt: now.Add(time.Second)})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.ByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("ByUserID: %v", err)
	}
	if got.Username != nil {
		t.Errorf("Username = %q, want NULL", *got.Username)
	}
}

func TestProfileRepository_UpsertUnknownUserFails(t *testing.T) {
	database := dbtest.Open(t)
	repo := NewProfileRepository(database)

	err := repo.Upsert(context.Background(), &model.Profile{ID: "ghost", UpdatedAt: time.Now().UTC()})
	if err == nil {
		t.Fatal("expected foreign key violation for unknown user")
	}
	if errors.Is(err, model.ErrProfileNotFound) {
		t.Error("foreign key failure must not be reported as not found")
	}
}
