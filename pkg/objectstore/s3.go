package objectstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
)

type S3Options struct {
	Bucket string
	Region string
	// Endpoint points the client at an S3 compatible service (MinIO, R2).
	// Requests then use path-style addressing.
	Endpoint string
	Folder   string
}

type S3Store struct {
	client *s3.Client
	opts   S3Options
}

func NewS3(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3_bucket is required for the s3 driver")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client, opts}, nil
}

func (s *S3Store) Upload(ctx context.Context, name, contentType string, body io.Reader) (*models.Image, error) {
	ext := strings.ToLower(path.Ext(name))
	key := path.Join(s.opts.Folder, uuid.NewString()+ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to upload %s", key)
	}

	return &models.Image{
		PublicID:     key,
		URL:          s.objectURL(key),
		Format:       strings.TrimPrefix(ext, "."),
		ResourceType: resourceType(contentType),
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, publicID, _ string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(publicID),
	})
	return errors.Wrapf(err, "failed to delete %s", publicID)
}

func (s *S3Store) objectURL(key string) string {
	if s.opts.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.opts.Endpoint, "/"), s.opts.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, key)
}

// resourceType is the top-level media type, e.g. "image" for "image/png".
func resourceType(contentType string) string {
	if i := strings.Index(contentType, "/"); i > 0 {
		return contentType[:i]
	}
	return "raw"
}
