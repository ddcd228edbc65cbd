// Package minio archives raw geometry blobs (TS guesses) in object storage.
package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/ChemRxn-Core/internal/config"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/ChemRxn-Core/pkg/errors"
)

// ObjectAPI is the slice of the MinIO client the geometry store needs,
// abstracted for testing.
type ObjectAPI interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Client
// ─────────────────────────────────────────────────────────────────────────────

// Client wraps a MinIO connection scoped to the configured geometry bucket.
type Client struct {
	api    *minio.Client
	bucket string
	logger logging.Logger
}

// NewClient connects to MinIO, verifies reachability, and creates the
// geometry bucket when it does not exist yet.
func NewClient(cfg config.MinIOConfig, log logging.Logger) (*Client, error) {
	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeInternal, "failed to create minio client")
	}

	c := &Client{api: api, bucket: cfg.Bucket, logger: log}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.ensureBucket(ctx); err != nil {
		return nil, err
	}

	log.Info("MinIO client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
	)
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}
	if !exists {
		if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeInternal, "failed to create bucket "+c.bucket)
		}
		c.logger.Info("Created bucket", logging.String("bucket", c.bucket))
	}
	return nil
}

// Bucket returns the configured geometry bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// HealthCheck verifies the bucket is still reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeServiceUnavailable, "minio unreachable")
	}
	if !exists {
		return appErrors.New(appErrors.ErrCodeServiceUnavailable, "bucket "+c.bucket+" missing")
	}
	return nil
}

func (c *Client) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return c.api.PutObject(ctx, bucket, object, reader, size, opts)
}

func (c *Client) GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return c.api.GetObject(ctx, bucket, object, opts)
}

func (c *Client) RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error {
	return c.api.RemoveObject(ctx, bucket, object, opts)
}

func (c *Client) StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return c.api.StatObject(ctx, bucket, object, opts)
}
