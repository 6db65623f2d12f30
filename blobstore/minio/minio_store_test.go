package minio

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memdb/blobstore"
	"github.com/hupe1980/memdb/block"
	"github.com/hupe1980/memdb/page"
	"github.com/hupe1980/memdb/spill"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newIntegrationStore connects to MINIO_ENDPOINT (default localhost:9000) and
// skips the test when no server answers.
func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	bucket := envOr("MINIO_BUCKET", "test-memdb")
	store, err := New(
		envOr("MINIO_ENDPOINT", "localhost:9000"),
		bucket,
		WithCredentials(envOr("MINIO_ACCESS_KEY", "minioadmin"), envOr("MINIO_SECRET_KEY", "minioadmin")),
		WithPrefix("it-"+time.Now().Format("20060102150405.000")+"/"),
	)
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	exists, err := store.client.BucketExists(ctx, bucket)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}
	return store
}

func TestMinioStore_Integration(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := t.Context()

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "raw/test.bin", data))

	blob, err := store.Open(ctx, "raw/test.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, len(data))
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, data, buf[:n])

	rc, err := blob.ReadRange(ctx, 6, 5)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(part))
	require.NoError(t, rc.Close())
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "raw/")
	require.NoError(t, err)
	assert.Equal(t, []string{"raw/test.bin"}, names)

	require.NoError(t, store.Delete(ctx, "raw/test.bin"))
	_, err = store.Open(ctx, "raw/test.bin")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestMinioStore_SpillRoundTrip(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := t.Context()

	col, err := block.NewOffheapBlockFromSlice(nil, []int64{1, -2, 3}, []bool{false, false, true})
	require.NoError(t, err)
	p, err := page.New(col)
	require.NoError(t, err)
	defer p.Release()

	s := spill.New(store)
	name, err := s.Spill(ctx, p)
	require.NoError(t, err)

	restored, err := s.Restore(ctx, name)
	require.NoError(t, err)
	defer restored.Release()

	got, err := restored.Block(0)
	require.NoError(t, err)
	typed, ok := block.As[int64](got)
	require.True(t, ok)
	v, isNull, err := typed.Get(1)
	require.NoError(t, err)
	assert.False(t, isNull)
	assert.Equal(t, int64(-2), v)

	require.NoError(t, s.Cleanup(ctx))
}

func TestStore_KeyMapping(t *testing.T) {
	store, err := New("localhost:9000", "bucket", WithCredentials("a", "b"), WithPrefix("memdb/"))
	require.NoError(t, err)

	assert.Equal(t, "memdb/q1/000001.page", store.key("q1/000001.page"))
	assert.Equal(t, "q1/000001.page", store.name("memdb/q1/000001.page"))

	bare := NewStore(store.client, "bucket", "")
	assert.Equal(t, "x", bare.key("x"))
	assert.Equal(t, "x", bare.name("x"))
}
