package page

import (
	"context"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memdb/block"
	"github.com/hupe1980/memdb/offheap"
)

func testPage(t *testing.T, alloc *offheap.Allocator, n int) *Page {
	t.Helper()

	longs := make([]int64, n)
	ints := make([]int32, n)
	nulls := make([]bool, n)
	for i := range n {
		longs[i] = int64(i) * 1_000_000_007
		ints[i] = int32(i)
		nulls[i] = i%5 == 0
	}
	a, err := block.NewOffheapBlockFromSlice(alloc, longs, nil)
	require.NoError(t, err)
	b, err := block.NewOffheapBlockFromSlice(alloc, ints, nulls)
	require.NoError(t, err)

	p, err := New(a, b)
	require.NoError(t, err)
	return p
}

func TestNew_PositionCountMismatch(t *testing.T) {
	a, err := block.NewCompactBlock([]int8{1, 2}, nil)
	require.NoError(t, err)
	b, err := block.NewCompactBlock([]int8{1}, nil)
	require.NoError(t, err)

	_, err = New(a, b)
	assert.ErrorIs(t, err, ErrPositionCountMismatch)
}

func TestPage_RegionAndCopy(t *testing.T) {
	alloc := offheap.NewAllocator()
	p := testPage(t, alloc, 100)

	region, err := p.GetRegion(10, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, region.PositionCount())
	assert.Equal(t, 2, region.ChannelCount())
	assert.Equal(t, p.RetainedSizeInBytes(), region.RetainedSizeInBytes())

	copied, err := region.CopyRegion(0, 20)
	require.NoError(t, err)
	assert.Less(t, copied.RetainedSizeInBytes(), region.RetainedSizeInBytes())

	ch, err := copied.Block(1)
	require.NoError(t, err)
	ints, ok := block.As[int32](ch)
	require.True(t, ok)
	v, isNull, err := ints.Get(1)
	require.NoError(t, err)
	assert.False(t, isNull)
	assert.Equal(t, int32(11), v)
	isNull, err = ints.IsNull(5)
	require.NoError(t, err)
	assert.True(t, isNull)

	gathered, err := p.CopyPositions([]int{99, 0, 99, 0, 99}, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, gathered.PositionCount())

	_, err = p.GetRegion(90, 20)
	assert.ErrorIs(t, err, block.ErrInvalidRegion)
	_, err = p.CopyPositions([]int{100}, 0, 1)
	assert.ErrorIs(t, err, block.ErrInvalidPosition)
	_, err = p.Block(2)
	assert.ErrorIs(t, err, ErrInvalidChannel)

	gathered.Release()
	copied.Release()
	region.Release()
	p.Release()
	assert.Zero(t, alloc.Stats().LiveBuffers)
	assert.Panics(t, p.Release)
}

func TestPage_Compact(t *testing.T) {
	alloc := offheap.NewAllocator()
	p := testPage(t, alloc, 64)
	region, err := p.GetRegion(3, 7)
	require.NoError(t, err)
	p.Release()

	compacted, err := region.Compact(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 7, compacted.PositionCount())
	assert.Equal(t, region.SizeInBytes(), compacted.SizeInBytes())
	assert.Less(t, compacted.RetainedSizeInBytes(), region.RetainedSizeInBytes())

	region.Release()
	compacted.Release()
	assert.Zero(t, alloc.Stats().LiveBuffers)
}

func TestPage_CompactKeepsCompactBlocks(t *testing.T) {
	alloc := offheap.NewAllocator()
	p := testPage(t, alloc, 5)

	compacted, err := p.Compact(context.Background(), 2)
	require.NoError(t, err)
	for c := range p.ChannelCount() {
		want, err := p.Block(c)
		require.NoError(t, err)
		got, err := compacted.Block(c)
		require.NoError(t, err)
		assert.Same(t, want, got, "channel %d", c)
	}
	assert.Equal(t, p.RetainedSizeInBytes(), compacted.RetainedSizeInBytes())

	p.Release()
	compacted.Release()
	assert.Zero(t, alloc.Stats().LiveBuffers)
}

func TestPage_CompactCanceled(t *testing.T) {
	p := testPage(t, nil, 8)
	defer p.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Compact(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPage_Empty(t *testing.T) {
	p := NewEmpty(5)
	assert.Equal(t, 5, p.PositionCount())
	assert.Zero(t, p.ChannelCount())
	assert.Zero(t, p.RetainedSizeInBytes())
	assert.Equal(t, "Page{positions=5, channels=[]}", p.String())
	p.Release()
}

func TestPage_CopySelectedDropsNulls(t *testing.T) {
	alloc := offheap.NewAllocator()
	p := testPage(t, alloc, 100)
	defer p.Release()

	present, err := p.NonNullPositions(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(80), present.GetCardinality())
	assert.False(t, present.Contains(0))
	assert.True(t, present.Contains(1))
	assert.Equal(t, int64(80*8+80*(4+1)), p.SelectedSizeInBytes(present))

	selected, err := p.CopySelected(present)
	require.NoError(t, err)
	defer selected.Release()
	assert.Equal(t, 80, selected.PositionCount())

	ch, err := selected.Block(1)
	require.NoError(t, err)
	nulls, err := block.NullPositions(ch)
	require.NoError(t, err)
	assert.True(t, nulls.IsEmpty())

	_, err = p.NonNullPositions(2)
	assert.ErrorIs(t, err, ErrInvalidChannel)
}

func TestPage_CopySelectedOutOfRange(t *testing.T) {
	alloc := offheap.NewAllocator()
	p := testPage(t, alloc, 10)
	defer p.Release()
	live := alloc.Stats().LiveBuffers

	_, err := p.CopySelected(roaring.BitmapOf(1, 20))
	assert.ErrorIs(t, err, block.ErrInvalidPosition)
	assert.Equal(t, live, alloc.Stats().LiveBuffers)
}
