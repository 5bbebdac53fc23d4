package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage talks to a MinIO server through minio-go.
type MinioStorage struct {
	client    *minio.Client
	publicURL string

	// listObjects is client.ListObjects; tests replace it.
	listObjects func(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

func NewMinioStorage(o Options) (*MinioStorage, error) {
	host, secure, err := splitEndpoint(o.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(o.AccessKey, o.SecretKey, ""),
		Secure: secure,
		Region: o.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinioStorage{client: client, publicURL: o.PublicURL, listObjects: client.ListObjects}, nil
}

// splitEndpoint turns "https://host:port/" into ("host:port", true).
func splitEndpoint(endpoint string) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimRight(endpoint, "/"), false, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "", false, fmt.Errorf("invalid endpoint %q", endpoint)
	}
	return u.Host, u.Scheme == "https", nil
}

func (m *MinioStorage) Upload(ctx context.Context, bucket, path string, data []byte, contentType string, upsert bool) (*UploadResult, error) {
	path, err := checkObject(bucket, path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrInvalidObject
	}

	if !upsert {
		_, err := m.client.StatObject(ctx, bucket, path, minio.StatObjectOptions{})
		if err == nil {
			return nil, common.ErrConflict
		}
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return nil, fmt.Errorf("failed to stat object: %w", err)
		}
	}

	_, err = m.client.PutObject(ctx, bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object: %w", err)
	}

	return &UploadResult{Path: path, PublicURL: m.PublicURL(bucket, path)}, nil
}

func (m *MinioStorage) Delete(ctx context.Context, bucket, path string) error {
	path, err := checkObject(bucket, path)
	if err != nil {
		return err
	}

	if err := m.client.RemoveObject(ctx, bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (m *MinioStorage) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	if bucket == "" {
		return nil, ErrInvalidObject
	}

	opts := minio.ListObjectsOptions{
		Prefix:    NormalizePath(prefix),
		Recursive: true,
	}

	// Cancelling stops minio-go's producer when we return early on an error.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for object := range m.listObjects(ctx, bucket, opts) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}

func (m *MinioStorage) SignedURL(ctx context.Context, bucket, path string, expiry time.Duration) (string, error) {
	path, err := checkObject(bucket, path)
	if err != nil {
		return "", err
	}

	u, err := m.client.PresignedGetObject(ctx, bucket, path, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}

func (m *MinioStorage) PublicURL(bucket, path string) string {
	return publicObjectURL(m.publicURL, bucket, path)
}
