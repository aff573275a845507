package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cricketreels/backend/internal/catalog"
	"github.com/cricketreels/backend/internal/models"
)

// S3Config locates the catalog object.
type S3Config struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string
}

// S3Client is the subset of the S3 API the catalog store needs.
type S3Client interface {
	manager.DownloadAPIClient
	manager.UploadAPIClient
}

// S3CatalogStore keeps the video catalog as a JSON array in an S3-compatible
// bucket. It implements catalog.Source.
type S3CatalogStore struct {
	downloader *manager.Downloader
	uploader   *manager.Uploader
	bucket     string
	key        string
}

// NewS3CatalogStore builds a store from the default AWS credential chain.
func NewS3CatalogStore(ctx context.Context, cfg S3Config) (*S3CatalogStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3 catalog: bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3CatalogStoreFromClient(client, cfg.Bucket, cfg.Key)
}

// NewS3CatalogStoreFromClient wraps an existing client.
func NewS3CatalogStoreFromClient(client S3Client, bucket, key string) (*S3CatalogStore, error) {
	if client == nil {
		return nil, errors.New("s3 catalog: client is required")
	}
	key = strings.TrimLeft(key, "/")
	if strings.TrimSpace(bucket) == "" || key == "" {
		return nil, errors.New("s3 catalog: bucket and key are required")
	}

	return &S3CatalogStore{
		downloader: manager.NewDownloader(client, func(d *manager.Downloader) {
			d.Concurrency = 1
		}),
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = 5 * 1024 * 1024
			u.LeavePartsOnError = false
		}),
		bucket: bucket,
		key:    key,
	}, nil
}

// Load downloads and decodes the catalog object.
func (s *S3CatalogStore) Load(ctx context.Context) ([]models.Video, error) {
	buf := manager.NewWriteAtBuffer(nil)
	if _, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	}); err != nil {
		return nil, fmt.Errorf("s3 catalog download %s/%s: %w", s.bucket, s.key, err)
	}

	entries, err := catalog.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("s3 catalog %s/%s: %w", s.bucket, s.key, err)
	}
	return entries, nil
}

// Publish replaces the catalog object with the given videos.
func (s *S3CatalogStore) Publish(ctx context.Context, videos []models.Video) error {
	if videos == nil {
		videos = []models.Video{}
	}
	body, err := json.Marshal(videos)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return fmt.Errorf("s3 catalog upload %s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

var _ catalog.Source = (*S3CatalogStore)(nil)
