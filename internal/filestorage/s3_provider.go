package filestorage

import (
	"context"
	"fmt"
	"io"

	"tastebook/backend/pkg/config"
	tblog "tastebook/backend/pkg/log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsGoConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Provider implements Provider using Amazon S3.
type S3Provider struct {
	client     *s3.Client
	uploader   *manager.Uploader
	bucketName string
	region     string
}

// InitializeS3Provider builds the S3 client from ambient AWS credentials.
func InitializeS3Provider() (*S3Provider, error) {
	bucket := config.Cfg.AWSS3Bucket
	region := config.Cfg.AWSRegion

	if bucket == "" || region == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET and AWS_REGION must be set for the s3 provider")
	}

	sdkConfig, err := awsGoConfig.LoadDefaultConfig(context.TODO(), awsGoConfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for S3: %w", err)
	}

	s3Client := s3.NewFromConfig(sdkConfig)
	tblog.L.Info("Amazon S3 storage provider initialized",
		zap.String("bucket", bucket), zap.String("region", region))

	return &S3Provider{
		client:     s3Client,
		uploader:   manager.NewUploader(s3Client),
		bucketName: bucket,
		region:     region,
	}, nil
}

func (s *S3Provider) Save(ctx context.Context, objectName string, content io.Reader) error {
	if s.uploader == nil || s.bucketName == "" {
		return fmt.Errorf("S3 provider not initialized")
	}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectName),
		Body:   content,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3 (bucket: %s, key: %s): %w", s.bucketName, objectName, err)
	}
	return nil
}

func (s *S3Provider) Delete(ctx context.Context, objectName string) error {
	if s.client == nil || s.bucketName == "" {
		return fmt.Errorf("S3 provider not initialized")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return fmt.Errorf("failed to delete S3 object %s: %w", objectName, err)
	}
	return nil
}

func (s *S3Provider) URL(objectName string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, objectName)
}
