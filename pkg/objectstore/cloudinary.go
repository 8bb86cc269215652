package objectstore

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
)

type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary_cloud_name, cloudinary_api_key and cloudinary_api_secret are required for the cloudinary driver")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &CloudinaryStore{cld, folder}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, _, _ string, body io.Reader) (*models.Image, error) {
	resp, err := s.cld.Upload.Upload(ctx, body, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if resp.Error.Message != "" {
		return nil, errors.Errorf("cloudinary upload failed: %s", resp.Error.Message)
	}
	return &models.Image{
		PublicID:     resp.PublicID,
		URL:          resp.SecureURL,
		Format:       resp.Format,
		ResourceType: resp.ResourceType,
	}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID, resourceType string) error {
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if resp.Error.Message != "" {
		return errors.Errorf("cloudinary destroy failed: %s", resp.Error.Message)
	}
	return nil
}
