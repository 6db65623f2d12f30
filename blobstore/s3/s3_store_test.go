package s3

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memdb/blobstore"
	"github.com/hupe1980/memdb/block"
	"github.com/hupe1980/memdb/page"
	"github.com/hupe1980/memdb/spill"
)

// TestIntegration_S3Store runs against the bucket named by S3_BUCKET using
// the default AWS credential chain.
func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := t.Context()
	store, err := New(ctx, bucket, WithPrefix(fmt.Sprintf("test-memdb-%d/", time.Now().UnixNano())))
	require.NoError(t, err)

	t.Run("multipart blob", func(t *testing.T) {
		data := make([]byte, 6<<20)
		_, _ = rand.Read(data)

		w, err := store.Create(ctx, "large.bin")
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		r, err := store.Open(ctx, "large.bin")
		require.NoError(t, err)
		defer func() { _ = r.Close() }()
		assert.Equal(t, int64(len(data)), r.Size())

		rc, err := r.ReadRange(ctx, 5<<20, 100)
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, data[5<<20:5<<20+100], got)

		require.NoError(t, store.Delete(ctx, "large.bin"))
	})

	t.Run("spill round trip", func(t *testing.T) {
		col, err := block.NewOffheapBlockFromSlice(nil, []int16{9, 8, 7}, nil)
		require.NoError(t, err)
		p, err := page.New(col)
		require.NoError(t, err)
		defer p.Release()

		s := spill.New(store, spill.WithPrefix("pages/"))
		name, err := s.Spill(ctx, p)
		require.NoError(t, err)

		names, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{name}, names)

		restored, err := s.Restore(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, 3, restored.PositionCount())
		restored.Release()

		require.NoError(t, s.Cleanup(ctx))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.Open(ctx, "nonexistent")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}
