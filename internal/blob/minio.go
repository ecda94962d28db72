package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// MinioConfig holds the connection settings for an S3-compatible backend.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

var _ Store = (*MinioStore)(nil)

// MinioStore implements Store over an S3-compatible backend (MinIO, AWS S3).
// Containers map to buckets and are created on first use. Safe for
// concurrent use.
type MinioStore struct {
	client *minio.Client

	mu      sync.Mutex
	buckets map[string]bool
}

func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStore{
		client:  client,
		buckets: make(map[string]bool),
	}, nil
}

func (m *MinioStore) ensureBucket(ctx context.Context, container string) error {
	m.mu.Lock()
	known := m.buckets[container]
	m.mu.Unlock()
	if known {
		return nil
	}

	exists, err := m.client.BucketExists(ctx, container)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", container, err)
	}
	if !exists {
		logrus.Infof("creating bucket %s", container)
		if err := m.client.MakeBucket(ctx, container, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", container, err)
		}
	}

	m.mu.Lock()
	m.buckets[container] = true
	m.mu.Unlock()

	return nil
}

func (m *MinioStore) Upload(ctx context.Context, container, name string, r io.Reader, size int64, contentType string) (string, error) {
	if err := m.ensureBucket(ctx, container); err != nil {
		return "", err
	}

	_, err := m.client.PutObject(ctx, container, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s", container, name), nil
}

func (m *MinioStore) Download(ctx context.Context, container, name string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, container, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	// GetObject is lazy; surface a missing object immediately.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isMinioNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}

	return obj, nil
}

func (m *MinioStore) Delete(ctx context.Context, container, name string) (bool, error) {
	_, err := m.client.StatObject(ctx, container, name, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return false, nil
		}
		return false, err
	}

	if err := m.client.RemoveObject(ctx, container, name, minio.RemoveObjectOptions{}); err != nil {
		return false, err
	}

	return true, nil
}

func (m *MinioStore) Exists(ctx context.Context, container, name string) (bool, error) {
	_, err := m.client.StatObject(ctx, container, name, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *MinioStore) PresignGet(ctx context.Context, container, name string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, container, name, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func isMinioNotFound(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
	}
	return false
}
