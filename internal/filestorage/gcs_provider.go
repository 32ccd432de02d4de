package filestorage

import (
	"context"
	"fmt"
	"io"

	"tastebook/backend/pkg/config"
	tblog "tastebook/backend/pkg/log"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCSProvider implements Provider using Google Cloud Storage.
type GCSProvider struct {
	client     *storage.Client
	bucketName string
}

// InitializeGCSProvider builds the GCS client. Credentials come from
// GOOGLE_APPLICATION_CREDENTIALS or workload identity.
func InitializeGCSProvider() (*GCSProvider, error) {
	projectID := config.Cfg.GCSProjectID
	bucketName := config.Cfg.GCSBucketName

	if projectID == "" || bucketName == "" {
		return nil, fmt.Errorf("GCS_PROJECT_ID and GCS_BUCKET_NAME must be set for the gcs provider")
	}

	client, err := storage.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Cloud Storage client: %w", err)
	}

	tblog.L.Info("Google Cloud Storage provider initialized",
		zap.String("projectID", projectID), zap.String("bucket", bucketName))

	return &GCSProvider{client: client, bucketName: bucketName}, nil
}

func (g *GCSProvider) Save(ctx context.Context, objectName string, content io.Reader) error {
	if g.client == nil || g.bucketName == "" {
		return fmt.Errorf("GCS provider not initialized")
	}

	wc := g.client.Bucket(g.bucketName).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(wc, content); err != nil {
		return fmt.Errorf("failed to copy content to GCS object writer: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close GCS object writer: %w", err)
	}
	return nil
}

func (g *GCSProvider) Delete(ctx context.Context, objectName string) error {
	if g.client == nil || g.bucketName == "" {
		return fmt.Errorf("GCS provider not initialized")
	}
	err := g.client.Bucket(g.bucketName).Object(objectName).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete object '%s' from GCS bucket '%s': %w", objectName, g.bucketName, err)
	}
	return nil
}

func (g *GCSProvider) URL(objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucketName, objectName)
}
