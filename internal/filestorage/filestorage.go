package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tastebook/backend/pkg/config"
	tblog "tastebook/backend/pkg/log"

	"go.uber.org/zap"
)

// Provider abstracts where ingested images end up. objectName is a relative
// key like "post_img/3f2a9c1b44d0e6a7.jpg".
type Provider interface {
	Save(ctx context.Context, objectName string, content io.Reader) error
	Delete(ctx context.Context, objectName string) error
	// URL returns the address a browser can load the object from.
	URL(objectName string) string
}

// DefaultProvider holds the initialized provider.
var DefaultProvider Provider

// InitFileStorage initializes DefaultProvider based on configuration.
// The local disk provider is the default and always available.
func InitFileStorage() error {
	providerType := config.Cfg.FileStorageProvider
	tblog.L.Info("Initializing file storage", zap.String("provider_type", providerType))

	var err error
	switch providerType {
	case "", "local":
		DefaultProvider, err = NewLocalProvider(config.Cfg.StaticDir)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage provider: %w", err)
		}
	case "s3":
		provider, err := InitializeS3Provider()
		if err != nil {
			return fmt.Errorf("failed to initialize S3 storage provider: %w", err)
		}
		DefaultProvider = provider
	case "gcs":
		provider, err := InitializeGCSProvider()
		if err != nil {
			return fmt.Errorf("failed to initialize GCS storage provider: %w", err)
		}
		DefaultProvider = provider
	case "minio":
		provider, err := InitializeMinioProvider()
		if err != nil {
			return fmt.Errorf("failed to initialize MinIO storage provider: %w", err)
		}
		DefaultProvider = provider
	default:
		tblog.L.Warn("Unsupported FILE_STORAGE_PROVIDER, falling back to local disk",
			zap.String("provider_type", providerType))
		DefaultProvider, err = NewLocalProvider(config.Cfg.StaticDir)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage provider: %w", err)
		}
	}

	if DefaultProvider == nil {
		tblog.L.Warn("No file storage provider initialized, image uploads will fail")
	}
	return nil
}

// LocalProvider writes objects into a static directory served by the app.
type LocalProvider struct {
	baseDir string
}

// NewLocalProvider ensures the base directory and the image subdirectories
// exist and returns a provider rooted there.
func NewLocalProvider(baseDir string) (*LocalProvider, error) {
	for _, dir := range []string{baseDir, filepath.Join(baseDir, "profile_pics"), filepath.Join(baseDir, "post_img")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create static directory %s: %w", dir, err)
		}
	}
	return &LocalProvider{baseDir: baseDir}, nil
}

func (l *LocalProvider) Save(ctx context.Context, objectName string, content io.Reader) error {
	if strings.Contains(objectName, "..") {
		return fmt.Errorf("invalid object name: %s", objectName)
	}
	path := filepath.Join(l.baseDir, filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", objectName, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

func (l *LocalProvider) Delete(ctx context.Context, objectName string) error {
	if strings.Contains(objectName, "..") {
		return fmt.Errorf("invalid object name: %s", objectName)
	}
	err := os.Remove(filepath.Join(l.baseDir, filepath.FromSlash(objectName)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *LocalProvider) URL(objectName string) string {
	return "/static/" + objectName
}
