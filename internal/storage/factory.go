package storage

import (
	"context"
	"fmt"

	"github.com/finn/cloud-drive-backend/internal/config"
)

// NewFromConfig selects a blob backend from the STORAGE_BACKEND setting.
func NewFromConfig(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageBackend {
	case "local":
		return NewLocalStore(cfg.StorageDir)
	case "s3":
		return NewS3Store(ctx, cfg.S3Bucket)
	case "memory":
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}
