package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/templui/magicprofile/internal/storage"
	"github.com/templui/magicprofile/internal/validation"
)

const avatarPrefix = "avatars/"

// AvatarService stores avatar images. A profile keeps only the returned reference.
type AvatarService struct {
	storage storage.Storage
	size    int
}

func NewAvatarService(storage storage.Storage, size int) *AvatarService {
	return &AvatarService{
		storage: storage,
		size:    size,
	}
}

// Upload validates and stores an image and returns its reference.
func (s *AvatarService) Upload(ctx context.Context, userID string, file multipart.File, header *multipart.FileHeader) (string, error) {
	contentType, err := validation.ValidateFile(header, validation.AvatarConstraints)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	ref := path.Join("avatars", userID, uuid.New().String()+ext)

	if err := s.storage.Save(ctx, ref, file, contentType); err != nil {
		return "", fmt.Errorf("failed to save avatar: %w", err)
	}

	slog.Info("avatar uploaded", "user_id", userID, "ref", ref, "size", header.Size)
	return ref, nil
}

// URL turns a reference into something an <img> can load. Absolute URLs pass through.
func (s *AvatarService) URL(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://") {
		return ref
	}
	return s.storage.URL(ref)
}

// Size is the display size of avatars in pixels.
func (s *AvatarService) Size() int {
	return s.size
}

// Remove deletes a replaced avatar. Only references this service created are touched.
func (s *AvatarService) Remove(ctx context.Context, ref string) {
	if !strings.HasPrefix(ref, avatarPrefix) {
		return
	}
	if err := s.storage.Delete(ctx, ref); err != nil {
		slog.Warn("failed to delete old avatar", "error", err, "ref", ref)
	}
}
