package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Backend names accepted by NewProvider.
const (
	BackendS3    = "s3"
	BackendMinio = "minio"
)

// Provider builds the configured backend on first use and hands the same
// client to every caller afterwards. A failed build is retried on the next
// call. Provider itself satisfies ObjectStorage.
type Provider struct {
	opts  Options
	build func(ctx context.Context, o Options) (ObjectStorage, error)

	mu sync.Mutex
	s  ObjectStorage
}

func NewProvider(backend string, o Options) (*Provider, error) {
	var build func(ctx context.Context, o Options) (ObjectStorage, error)

	switch backend {
	case BackendS3, "":
		build = func(ctx context.Context, o Options) (ObjectStorage, error) { return NewS3Storage(ctx, o) }
	case BackendMinio:
		build = func(_ context.Context, o Options) (ObjectStorage, error) { return NewMinioStorage(o) }
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}

	return &Provider{opts: o, build: build}, nil
}

// Get returns the shared client.
func (p *Provider) Get(ctx context.Context) (ObjectStorage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.s != nil {
		return p.s, nil
	}

	s, err := p.build(ctx, p.opts)
	if err != nil {
		return nil, fmt.Errorf("storage init: %w", err)
	}
	p.s = s
	return s, nil
}

func (p *Provider) Upload(ctx context.Context, bucket, path string, data []byte, contentType string, upsert bool) (*UploadResult, error) {
	s, err := p.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.Upload(ctx, bucket, path, data, contentType, upsert)
}

func (p *Provider) Delete(ctx context.Context, bucket, path string) error {
	s, err := p.Get(ctx)
	if err != nil {
		return err
	}
	return s.Delete(ctx, bucket, path)
}

func (p *Provider) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	s, err := p.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, bucket, prefix)
}

func (p *Provider) SignedURL(ctx context.Context, bucket, path string, expiry time.Duration) (string, error) {
	s, err := p.Get(ctx)
	if err != nil {
		return "", err
	}
	return s.SignedURL(ctx, bucket, path, expiry)
}

// PublicURL needs no client, so it never triggers the build.
func (p *Provider) PublicURL(bucket, path string) string {
	return publicObjectURL(p.opts.PublicURL, bucket, path)
}
