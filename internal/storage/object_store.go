package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hospoda/shiftboard/internal/config"
	"github.com/hospoda/shiftboard/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore talks to any S3 compatible endpoint through minio-go.
type ObjectStore struct {
	client       *minio.Client
	publicClient *minio.Client // signs URLs against the browser-facing endpoint
	bucket       string
	name         string
}

func NewMinIOClient(cfg config.MinIOConfig) (*ObjectStore, error) {
	creds := credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	store := &ObjectStore{client: client, bucket: cfg.Bucket, name: "minio"}
	if cfg.PublicEndpoint != "" && cfg.PublicEndpoint != cfg.Endpoint {
		// Region is fixed so presigning never performs a bucket location lookup.
		public, err := minio.New(cfg.PublicEndpoint, &minio.Options{
			Creds:  creds,
			Secure: cfg.UseSSL,
			Region: "us-east-1",
		})
		if err != nil {
			return nil, err
		}
		store.publicClient = public
	}
	return store, nil
}

func NewS3Client(cfg config.S3Config) (*ObjectStore, error) {
	var creds *credentials.Credentials
	if cfg.AccessKey == "" {
		creds = credentials.NewIAM("")
	} else {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	return &ObjectStore{client: client, bucket: cfg.Bucket, name: "s3"}, nil
}

func (s *ObjectStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	details := map[string]interface{}{
		"object_name":  objectName,
		"size":         size,
		"content_type": contentType,
		"bucket":       s.bucket,
	}
	if err != nil {
		logger.Error(s.name+"_upload_failed", err, details)
	} else {
		logger.Info(s.name+"_upload_success", details)
	}
	return err
}

func (s *ObjectStore) Delete(ctx context.Context, objectName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	details := map[string]interface{}{
		"object_name": objectName,
		"bucket":      s.bucket,
	}
	if err != nil {
		logger.Error(s.name+"_delete_failed", err, details)
	} else {
		logger.Info(s.name+"_delete_success", details)
	}
	return err
}

func (s *ObjectStore) PresignedGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	client := s.client
	if s.publicClient != nil {
		client = s.publicClient
	}
	urlValue, err := client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return urlValue.String(), nil
}

func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed creating bucket %s: %w", s.bucket, err)
	}
	return nil
}
