package branding

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"forklift-training-service/internal/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig addresses the bucket holding the logo object.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps the logo as an object in a MinIO (or S3 compatible) bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

func (s *MinioStore) GetLogo(ctx context.Context) (domain.Logo, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, logoName, minio.GetObjectOptions{})
	if err != nil {
		return domain.Logo{}, mapMinioErr(err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return domain.Logo{}, mapMinioErr(err)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return domain.Logo{}, mapMinioErr(err)
	}
	return domain.Logo{Data: data, ContentType: info.ContentType}, nil
}

func (s *MinioStore) PutLogo(ctx context.Context, logo domain.Logo) error {
	_, err := s.client.PutObject(ctx, s.bucket, logoName, bytes.NewReader(logo.Data), int64(len(logo.Data)),
		minio.PutObjectOptions{ContentType: logo.ContentType})
	if err != nil {
		return fmt.Errorf("put logo: %w", err)
	}
	return nil
}

func (s *MinioStore) DeleteLogo(ctx context.Context) error {
	if err := s.client.RemoveObject(ctx, s.bucket, logoName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove logo: %w", err)
	}
	return nil
}

func mapMinioErr(err error) error {
	if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return domain.ErrNoLogo
	}
	return fmt.Errorf("get logo: %w", err)
}
