package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hospoda/shiftboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Load()

	cfg.Storage.Backend = "memory"
	store, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	cfg.Storage.Backend = "minio"
	store, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &ObjectStore{}, store)

	cfg.Storage.Backend = "s3"
	cfg.S3.AccessKey = "key"
	cfg.S3.SecretKey = "secret"
	store, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &ObjectStore{}, store)

	cfg.Storage.Backend = "ftp"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestMinIOPresignUsesPublicEndpoint(t *testing.T) {
	store, err := NewMinIOClient(config.MinIOConfig{
		Endpoint:       "minio:9000",
		PublicEndpoint: "files.hospoda.local",
		AccessKey:      "key",
		SecretKey:      "secret",
		Bucket:         "hospoda",
	})
	require.NoError(t, err)

	url, err := store.PresignedGetURL(context.Background(), "gallery/u/1.jpg", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://files.hospoda.local/hospoda/gallery/u/1.jpg"), url)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Upload(ctx, "a.jpg", strings.NewReader("jpeg"), 4, "image/jpeg"))
	data, contentType, ok := store.Object("a.jpg")
	require.True(t, ok)
	assert.Equal(t, "jpeg", string(data))
	assert.Equal(t, "image/jpeg", contentType)

	url, err := store.PresignedGetURL(ctx, "a.jpg", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, url, "a.jpg")

	_, err = store.PresignedGetURL(ctx, "missing.jpg", time.Hour)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	store.FailDeletes = true
	assert.Error(t, store.Delete(ctx, "a.jpg"))
	assert.Equal(t, 1, store.Len())

	store.FailDeletes = false
	require.NoError(t, store.Delete(ctx, "a.jpg"))
	assert.Equal(t, 0, store.Len())
}
