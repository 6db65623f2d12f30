package offheap

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memdb/internal/mem"
)

func TestBuffer_TypedAccess(t *testing.T) {
	a := NewAllocator()
	b, err := a.Allocate(64)
	require.NoError(t, err)
	defer b.Release()

	Store[int8](b, 0, -7)
	Store[int16](b, 2, math.MinInt16)
	Store[int32](b, 4, 123456)
	Store[int64](b, 8, math.MaxInt64)
	Store[float64](b, 16, 3.5)
	Store[uint32](b, 24, math.MaxUint32)

	assert.Equal(t, int8(-7), Load[int8](b, 0))
	assert.Equal(t, int16(math.MinInt16), Load[int16](b, 2))
	assert.Equal(t, int32(123456), Load[int32](b, 4))
	assert.Equal(t, int64(math.MaxInt64), Load[int64](b, 8))
	assert.Equal(t, 3.5, Load[float64](b, 16))
	assert.Equal(t, uint32(math.MaxUint32), Load[uint32](b, 24))

	b.SetByte(63, 9)
	assert.Equal(t, byte(9), b.Byte(63))
}

func TestBuffer_OutOfBoundsPanics(t *testing.T) {
	b, err := NewAllocator().Allocate(16)
	require.NoError(t, err)
	defer b.Release()

	// The physical mapping is a whole page, but access is limited to the logical window.
	assert.Panics(t, func() { _ = Load[int64](b, 12) })
	assert.Panics(t, func() { Store[int32](b, 16, 1) })
	assert.Panics(t, func() { _ = b.Byte(16) })
}

func TestBuffer_CopyFromCopyTo(t *testing.T) {
	b, err := NewAllocator().Allocate(5 * 4)
	require.NoError(t, err)
	defer b.Release()

	src := []int32{100, 1, 2, 3, 200}
	CopyFrom(b, 4, src, 1, 3)
	CopyFrom(b, 0, src, 0, 0)

	dst := make([]int32, 3)
	CopyTo(dst, b, 4)
	assert.Equal(t, []int32{1, 2, 3}, dst)

	assert.Equal(t, int32(0), Load[int32](b, 0))
	CopyTo([]int32{}, b, 0)

	assert.Panics(t, func() { CopyFrom(b, 8, src, 0, 5) })
	assert.Panics(t, func() { CopyTo(make([]int32, 6), b, 0) })
}

func TestBuffer_SizeAndCompactness(t *testing.T) {
	ps := mem.PageSize()
	a := NewAllocator()

	small, err := a.Allocate(12)
	require.NoError(t, err)
	defer small.Release()
	assert.Equal(t, 12, small.Len())
	assert.Equal(t, int64(ps), small.RetainedSize())
	assert.True(t, small.IsCompact())

	page, err := a.Allocate(ps)
	require.NoError(t, err)
	defer page.Release()
	assert.True(t, page.IsCompact())
	assert.Equal(t, int64(ps), page.RetainedSize())

	empty, err := a.Allocate(0)
	require.NoError(t, err)
	defer empty.Release()
	assert.True(t, empty.IsCompact())
	assert.Zero(t, empty.RetainedSize())
	assert.Zero(t, empty.Len())

	_, err = a.Allocate(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestBuffer_RefCounting(t *testing.T) {
	a := NewAllocator()
	b, err := a.Allocate(128)
	require.NoError(t, err)
	assert.Equal(t, int32(1), b.Refs())

	view := b.Retain()
	assert.Same(t, b, view)
	assert.Equal(t, int32(2), b.Refs())

	Store[int64](b, 0, 77)
	b.Release()
	assert.False(t, b.Released())
	assert.Equal(t, int64(77), Load[int64](view, 0), "view keeps the mapping alive")
	assert.Equal(t, int64(1), a.Stats().LiveBuffers)

	view.Release()
	assert.True(t, b.Released())
	assert.Equal(t, int64(0), a.Stats().LiveBuffers)
	assert.Equal(t, int64(0), a.Stats().LiveBytes)

	assert.Panics(t, func() { b.Release() }, "double release")
	assert.Panics(t, func() { b.Retain() }, "retain after release")
	assert.Panics(t, func() { _ = Load[int64](b, 0) }, "use after release")
}

func TestBuffer_ConcurrentRetainRelease(t *testing.T) {
	a := NewAllocator()
	b, err := a.Allocate(4096)
	require.NoError(t, err)
	Store[int64](b, 0, 5)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				v := b.Retain()
				_ = Load[int64](v, 0)
				v.Release()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), b.Refs())
	b.Release()
	assert.Equal(t, uint64(1), a.Stats().TotalReleases)
}
