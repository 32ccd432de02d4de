package filestorage

import (
	"context"
	"fmt"
	"io"

	"tastebook/backend/pkg/config"
	tblog "tastebook/backend/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioProvider implements Provider against a MinIO (or S3-compatible)
// endpoint. Useful for self-hosted deployments.
type MinioProvider struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

// InitializeMinioProvider builds the MinIO client and ensures the bucket exists.
func InitializeMinioProvider() (*MinioProvider, error) {
	cfg := config.Cfg
	if cfg.MinioEndpoint == "" || cfg.MinioBucket == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET must be set for the minio provider")
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check MinIO bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create MinIO bucket: %w", err)
		}
	}

	tblog.L.Info("MinIO storage provider initialized",
		zap.String("endpoint", cfg.MinioEndpoint), zap.String("bucket", cfg.MinioBucket))

	return &MinioProvider{
		client:   client,
		bucket:   cfg.MinioBucket,
		endpoint: cfg.MinioEndpoint,
		useSSL:   cfg.MinioUseSSL,
	}, nil
}

func (m *MinioProvider) Save(ctx context.Context, objectName string, content io.Reader) error {
	if m.client == nil {
		return fmt.Errorf("MinIO provider not initialized")
	}
	// Size -1 streams with multipart upload.
	_, err := m.client.PutObject(ctx, m.bucket, objectName, content, -1, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to upload to MinIO (bucket: %s, key: %s): %w", m.bucket, objectName, err)
	}
	return nil
}

func (m *MinioProvider) Delete(ctx context.Context, objectName string) error {
	if m.client == nil {
		return fmt.Errorf("MinIO provider not initialized")
	}
	if err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete MinIO object %s: %w", objectName, err)
	}
	return nil
}

func (m *MinioProvider) URL(objectName string) string {
	scheme := "http"
	if m.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, m.endpoint, m.bucket, objectName)
}
