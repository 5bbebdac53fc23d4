// Package storage is the object-storage collaborator: uploads, deletes,
// listings and signed URLs against an S3-compatible service. Two backends are
// provided, one on the AWS SDK and one on minio-go; Provider builds the
// configured one lazily and shares it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidObject is returned for an empty bucket, empty path or nil payload.
var ErrInvalidObject = errors.New("invalid object reference")

// UploadResult describes a stored object.
type UploadResult struct {
	Path      string
	PublicURL string
}

// ObjectStorage is what services need from an object store.
type ObjectStorage interface {
	// Upload stores data at bucket/path. With upsert false an existing
	// object makes the call fail with common.ErrConflict.
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string, upsert bool) (*UploadResult, error)
	Delete(ctx context.Context, bucket, path string) error
	// List returns the keys under prefix, recursively.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	SignedURL(ctx context.Context, bucket, path string, expiry time.Duration) (string, error)
	PublicURL(bucket, path string) string
}

// NormalizePath strips leading slashes and turns backslashes into slashes.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.TrimLeft(p, "/")
}

func checkObject(bucket, path string) (string, error) {
	path = NormalizePath(path)
	if bucket == "" || path == "" {
		return "", ErrInvalidObject
	}
	return path, nil
}

func publicObjectURL(base, bucket, path string) string {
	u, err := url.JoinPath(base, bucket, NormalizePath(path))
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + bucket + "/" + NormalizePath(path)
	}
	return u
}

// checkFolder rejects a prefix that would cover the whole bucket.
func checkFolder(bucket, prefix string) error {
	if bucket == "" || NormalizePath(prefix) == "" {
		return ErrInvalidObject
	}
	return nil
}

// SignedURLs signs every object under prefix. Objects that fail to sign are
// skipped; a failed listing is an error. An empty prefix is ErrInvalidObject.
func SignedURLs(ctx context.Context, s ObjectStorage, bucket, prefix string, expiry time.Duration) ([]string, error) {
	if err := checkFolder(bucket, prefix); err != nil {
		return nil, err
	}

	keys, err := s.List(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(keys))
	for _, k := range keys {
		u, err := s.SignedURL(ctx, bucket, k, expiry)
		if err != nil {
			continue
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// RemovePrefix deletes every object under prefix and joins the failures. An
// empty prefix is ErrInvalidObject.
func RemovePrefix(ctx context.Context, s ObjectStorage, bucket, prefix string) error {
	if err := checkFolder(bucket, prefix); err != nil {
		return err
	}

	keys, err := s.List(ctx, bucket, prefix)
	if err != nil {
		return err
	}

	var errs []error
	for _, k := range keys {
		if err := s.Delete(ctx, bucket, k); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}
