// Package backup snapshots the data directory into S3-compatible object
// storage so the flat files survive a lost host.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config carries the object storage connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Service uploads data directory snapshots.
type Service struct {
	client *minio.Client
	bucket string
}

// NewService connects to the object store and makes sure the bucket
// exists.
func NewService(ctx context.Context, cfg Config) (*Service, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &Service{client: client, bucket: cfg.Bucket}, nil
}

// Snapshot archives the data directory and uploads it under a
// timestamped object name. Returns the object name for logging.
func (s *Service) Snapshot(ctx context.Context, dataDir string) (string, error) {
	data, err := buildArchive(dataDir)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("snapshot-%s.tar.gz", time.Now().UTC().Format("20060102-150405"))
	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/gzip",
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	return name, nil
}
