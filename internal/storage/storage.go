package storage

import (
	"context"
	"io"
	"log/slog"

	cfg "github.com/templui/magicprofile/internal/config"
)

// Storage defines the interface for avatar object storage
type Storage interface {
	// Save stores the content of r at the given key
	Save(ctx context.Context, key string, r io.Reader, contentType string) error

	// Delete removes the object at the given key
	Delete(ctx context.Context, key string) error

	// URL returns a URL a browser can load the object from
	URL(key string) string
}

// New returns the storage backend selected by STORAGE_DRIVER.
func New(c *cfg.Config) (Storage, error) {
	if c.UsesS3() {
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:        c.S3Region,
			Bucket:        c.S3Bucket,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			Endpoint:      c.S3Endpoint,
			PresignExpiry: c.S3PresignExpiryPublic,
		})
	}

	slog.Info("initializing local storage", "dir", c.UploadDir)
	return NewLocalStorage(c.UploadDir, LocalURLPrefix)
}
