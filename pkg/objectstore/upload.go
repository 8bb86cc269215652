package objectstore

import (
	"context"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// UploadImage checks that an uploaded file is an image no larger than
// maxSize and pushes it to the store.
func UploadImage(ctx context.Context, store Store, fh *multipart.FileHeader, maxSize int64) (*models.Image, error) {
	if maxSize > 0 && fh.Size > maxSize {
		return nil, errcodes.PayloadTooLarge()
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, errcodes.BadRequest("Only image files are allowed")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errors.WithStack(err)
	}

	img, err := store.Upload(ctx, fh.Filename, mtype.String(), f)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return img, nil
}

// DeleteReplaced removes an asset that a new upload replaced. The entity has
// already been updated by then, so a failure is logged rather than returned.
func DeleteReplaced(ctx context.Context, store Store, publicID, resourceType string) {
	if publicID == "" {
		return
	}
	if resourceType == "" {
		resourceType = "image"
	}
	if err := store.Delete(ctx, publicID, resourceType); err != nil {
		logger.FromContext(ctx).Warn("failed to delete replaced asset", logger.Data{"public_id": publicID, "error": err.Error()})
	}
}
