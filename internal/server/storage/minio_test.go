package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEndpoint(t *testing.T) {
	host, secure, err := splitEndpoint("http://127.0.0.1:9000/")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", host)
	assert.False(t, secure)

	host, secure, err = splitEndpoint("https://s3.example.com")
	require.NoError(t, err)
	assert.Equal(t, "s3.example.com", host)
	assert.True(t, secure)

	host, secure, err = splitEndpoint("minio:9000")
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", host)
	assert.False(t, secure)

	_, _, err = splitEndpoint("http://")
	require.Error(t, err)
}

func TestNewMinioStorage(t *testing.T) {
	m, err := NewMinioStorage(Options{
		Endpoint: "http://127.0.0.1:9000", PublicURL: "http://127.0.0.1:9000", AccessKey: "admin", SecretKey: "secretpassword",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/profile_pictures/u1/a.png", m.PublicURL("profile_pictures", "u1/a.png"))
}

func TestMinio_RejectsInvalidObjects(t *testing.T) {
	m, err := NewMinioStorage(Options{Endpoint: "127.0.0.1:9000"})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = m.Upload(ctx, "b", "", []byte("x"), "", true)
	assert.ErrorIs(t, err, ErrInvalidObject)
	_, err = m.Upload(ctx, "b", "k", nil, "", true)
	assert.ErrorIs(t, err, ErrInvalidObject)
	assert.ErrorIs(t, m.Delete(ctx, "", "k"), ErrInvalidObject)
	_, err = m.List(ctx, "", "p")
	assert.ErrorIs(t, err, ErrInvalidObject)
	_, err = m.SignedURL(ctx, "b", "/", 0)
	assert.ErrorIs(t, err, ErrInvalidObject)
}

func TestMinioList_StopsProducerOnError(t *testing.T) {
	m, err := NewMinioStorage(Options{Endpoint: "127.0.0.1:9000"})
	require.NoError(t, err)

	producerDone := make(chan struct{})
	m.listObjects = func(ctx context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
		assert.Equal(t, "c1/", opts.Prefix)
		ch := make(chan minio.ObjectInfo)
		go func() {
			defer close(producerDone)
			defer close(ch)
			ch <- minio.ObjectInfo{Key: "c1/a.png"}
			ch <- minio.ObjectInfo{Err: errors.New("access denied")}
			for {
				select {
				case ch <- minio.ObjectInfo{Key: "c1/more.png"}:
				case <-ctx.Done():
					return
				}
			}
		}()
		return ch
	}

	_, err = m.List(context.Background(), "b", "/c1/")
	require.ErrorContains(t, err, "access denied")

	select {
	case <-producerDone:
	case <-time.After(time.Second):
		t.Fatal("listing goroutine still running after List returned")
	}
}

func TestMinioList_CollectsKeys(t *testing.T) {
	m, err := NewMinioStorage(Options{Endpoint: "127.0.0.1:9000"})
	require.NoError(t, err)

	m.listObjects = func(_ context.Context, _ string, _ minio.ListObjectsOptions) <-chan minio.ObjectInfo {
		ch := make(chan minio.ObjectInfo, 2)
		ch <- minio.ObjectInfo{Key: "c1/a.png"}
		ch <- minio.ObjectInfo{Key: "c1/b.png"}
		close(ch)
		return ch
	}

	keys, err := m.List(context.Background(), "b", "c1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1/a.png", "c1/b.png"}, keys)
}
