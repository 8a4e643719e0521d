package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/lehigh-university-libraries/lotcataloger/internal/config"
	"github.com/lehigh-university-libraries/lotcataloger/internal/images"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrNotConfigured = errors.New("publish endpoint and bucket are required")

// Publisher mirrors uploaded images to the host behind the public base URL
type Publisher interface {
	Put(ctx context.Context, name, localPath string) error
	Remove(ctx context.Context, name string) error
}

// MinioPublisher writes objects to an S3-compatible bucket
type MinioPublisher struct {
	client *minio.Client
	bucket string
	prefix string
}

// New returns a nil Publisher when publishing is disabled
func New(cfg config.Publish) (Publisher, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	p, err := NewMinio(cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("Publishing uploads", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return p, nil
}

func NewMinio(cfg config.Publish) (*MinioPublisher, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		useSSL = useSSL || u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioPublisher{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// ObjectName is the bucket key for an uploaded filename
func (p *MinioPublisher) ObjectName(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

func (p *MinioPublisher) Put(ctx context.Context, name, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	key := p.ObjectName(name)
	_, err = p.client.PutObject(ctx, p.bucket, key, f, info.Size(), minio.PutObjectOptions{
		ContentType: images.ContentType(name),
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}

	slog.Info("Image published", "bucket", p.bucket, "key", key, "size", info.Size())
	return nil
}

func (p *MinioPublisher) Remove(ctx context.Context, name string) error {
	key := p.ObjectName(name)
	if err := p.client.RemoveObject(ctx, p.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
