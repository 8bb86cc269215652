package objectstore

import (
	"context"
	"io"

	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
)

// Store keeps uploaded assets outside the database. Only the returned image
// metadata is persisted on the owning entity.
type Store interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (*models.Image, error)
	Delete(ctx context.Context, publicID, resourceType string) error
}

// New builds the store selected by object_storage_driver.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.ObjectStorageDriver {
	case config.ObjectStorageCloudinary:
		return NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.ObjectStorageFolder)
	case config.ObjectStorageS3:
		return NewS3(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Folder:   cfg.ObjectStorageFolder,
		})
	default:
		return nil, errors.Errorf("unknown object storage driver %q", cfg.ObjectStorageDriver)
	}
}
