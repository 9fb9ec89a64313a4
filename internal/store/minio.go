package store

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/airlink-io/nodectl/pkg/log"
	"github.com/airlink-io/nodectl/pkg/options"
)

type minioProvider struct {
	client *minio.Client
	bucket string
}

// NewMinIOProvider creates an S3-compatible firmware artifact store.
func NewMinIOProvider(opts *options.S3Options) (Provider, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &minioProvider{
		client: client,
		bucket: opts.BucketName,
	}, nil
}

func (p *minioProvider) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		log.Info("Bucket does not exist, creating", "bucket", p.bucket)
		if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

func (p *minioProvider) PutFirmware(ctx context.Context, localPath string) (string, error) {
	key := filepath.Base(localPath)

	info, err := p.client.FPutObject(ctx, p.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload firmware artifact: %w", err)
	}

	log.Info("Firmware artifact stored", "bucket", p.bucket, "key", key, "size", info.Size)
	return key, nil
}

func (p *minioProvider) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	signed, err := p.client.PresignedGetObject(ctx, p.bucket, objectKey, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned url: %w", err)
	}
	return signed.String(), nil
}
