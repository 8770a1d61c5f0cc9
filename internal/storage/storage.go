package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hospoda/shiftboard/internal/config"
)

// BlobStore holds gallery images. Object names are opaque to callers.
type BlobStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, objectName string) error
	PresignedGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	EnsureBucket(ctx context.Context) error
}

// New picks the backend named by STORAGE_BACKEND.
func New(cfg *config.Config) (BlobStore, error) {
	switch cfg.Storage.Backend {
	case "", "minio":
		return NewMinIOClient(cfg.MinIO)
	case "s3":
		return NewS3Client(cfg.S3)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.Storage.Backend)
	}
}
