package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/templui/magicprofile/internal/db/dbtest"
	"github.com/templui/magicprofile/internal/model"
	"github.com/templui/magicprofile/internal/repository"
)

func newProfileService(t *testing.T) *ProfileService {
	t.Helper()
	database := dbtest.Open(t)
	err := repository.NewUserRepository(database).Create(context.Background(), &model.User{
		ID:        "user-1",
		Email:     "alice@example.com",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewProfileService(repository.NewProfileRepository(database))
}

func TestProfileService_FetchMissing(t *testing.T) {
	svc := newProfileService(t)
	_, err := svc.Fetch(context.Background(), "user-1")
	if !errors.Is(err, model.ErrProfileNotFound) {
		t.Errorf("err = %v, want ErrProfileNotFound", err)
	}
}

func TestProfileService_UpsertCleansFields(t *testing.T) {
	svc := newProfileService(t)
	ctx := context.Background()

	profile := &model.Profile{
		ID:        "user-1",
		Username:  model.Nullable("  <b>Tom & Jerry</b><script>x()</script> "),
		Website:   model.Nullable("https://a.example/?a=1&b=2"),
		AvatarURL: model.Nullable("avatars/user-1/a.png"),
		UpdatedAt: time.Now(),
	}
	if err := svc.Upsert(ctx, profile); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := svc.Fetch(ctx, "user-1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if model.Value(got.Username) != "Tom & Jerry" {
		t.Errorf("username = %q, want %q", model.Value(got.Username), "Tom & Jerry")
	}
	if model.Value(got.Website) != "https://a.example/?a=1&b=2" {
		t.Errorf("website = %q", model.Value(got.Website))
	}
	if model.Value(got.AvatarURL) != "avatars/user-1/a.png" {
		t.Errorf("avatar = %q", model.Value(got.AvatarURL))
	}
}

func TestProfileService_UpsertNormalizesUnicode(t *testing.T) {
	svc := newProfileService(t)
	ctx := context.Background()

	decomposed := "Jose\u0301"
	if err := svc.Upsert(ctx, &model.Profile{ID: "user-1", Username: &decomposed, UpdatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	got, _ := svc.Fetch(ctx, "user-1")
	if model.Value(got.Username) != "Jos\u00e9" {
		t.Errorf("username = %q, want NFC form", model.Value(got.Username))
	}
}

func TestProfileService_UpsertRejectsInvalid(t *testing.T) {
	svc := newProfileService(t)
	ctx := context.Background()

	err := svc.Upsert(ctx, &model.Profile{ID: "user-1", Website: model.Nullable("javascript:alert(1)"), UpdatedAt: time.Now()})
	if err == nil {
		t.Fatal("invalid website accepted")
	}
	if _, err := svc.Fetch(ctx, "user-1"); !errors.Is(err, model.ErrProfileNotFound) {
		t.Errorf("row written despite validation error: %v", err)
	}

	if err := svc.Upsert(ctx, &model.Profile{UpdatedAt: time.Now()}); err == nil {
		t.Error("profile without id accepted")
	}
}

func TestProfileService_EmptyFieldsStoredAsNull(t *testing.T) {
	svc := newProfileService(t)
	ctx := context.Background()

	if err := svc.Upsert(ctx, &model.Profile{ID: "user-1", Username: model.Nullable("   "), UpdatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Fetch(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != nil || got.Website != nil || got.AvatarURL != nil {
		t.Errorf("profile = %+v, want NULL fields", got)
	}
}
