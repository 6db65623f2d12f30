package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memdb/offheap"
)

func TestOffheapBuilder_RegionOfFullBuilder(t *testing.T) {
	alloc := offheap.NewAllocator()
	b, err := NewOffheapBuilder[int32](alloc, 3)
	require.NoError(t, err)

	for _, v := range []int32{10, 20, 30} {
		require.NoError(t, b.Append(v))
	}
	assert.True(t, b.IsFull())

	blk, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 3, blk.PositionCount())
	assert.Equal(t, IntArrayEncoding, blk.EncodingName())
	assert.Equal(t, int64(12), blk.SizeInBytes())

	region, err := blk.GetRegion(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, region.PositionCount())
	v, isNull, err := region.Get(0)
	require.NoError(t, err)
	assert.False(t, isNull)
	assert.Equal(t, int32(20), v)
	v, _, err = region.Get(1)
	require.NoError(t, err)
	assert.Equal(t, int32(30), v)

	blk.Release()
	// The region keeps the storage alive.
	v, _, err = region.Get(0)
	require.NoError(t, err)
	assert.Equal(t, int32(20), v)

	region.Release()
	assert.Zero(t, alloc.Stats().LiveBuffers)
}

func TestOffheapBuilder_CapacityExceeded(t *testing.T) {
	b, err := NewOffheapBuilder[int64](nil, 2)
	require.NoError(t, err)
	defer b.Release()

	require.NoError(t, b.Append(1))
	require.NoError(t, b.Append(2))
	assert.ErrorIs(t, b.Append(3), ErrCapacityExceeded)
	assert.ErrorIs(t, b.WriteValue(3), ErrCapacityExceeded)
	assert.Equal(t, 2, b.PositionCount())
}

func TestOffheapBuilder_Nulls(t *testing.T) {
	alloc := offheap.NewAllocator()

	plain, err := NewOffheapBuilder[int16](alloc, 4)
	require.NoError(t, err)
	assert.ErrorIs(t, plain.AppendNull(), ErrNotNullable)
	plain.Release()

	b, err := NewOffheapBuilder[int16](alloc, 4, WithNulls())
	require.NoError(t, err)
	require.NoError(t, b.Append(-5))
	require.NoError(t, b.AppendNull())
	require.NoError(t, b.WriteValue(7))
	require.NoError(t, b.CloseEntry())

	_, isNull, err := b.Get(1)
	require.NoError(t, err)
	assert.True(t, isNull)

	blk, err := b.Build()
	require.NoError(t, err)
	assert.True(t, blk.MayHaveNull())
	assert.Equal(t, int64(3*(2+1)), blk.SizeInBytes())

	got := []struct {
		v      int16
		isNull bool
	}{{-5, false}, {0, true}, {7, false}}
	for i, want := range got {
		v, isNull, err := blk.Get(i)
		require.NoError(t, err)
		assert.Equal(t, want.isNull, isNull)
		if !isNull {
			assert.Equal(t, want.v, v)
		}
	}

	blk.Release()
	assert.Zero(t, alloc.Stats().LiveBuffers)
}

func TestOffheapBuilder_EntryProtocol(t *testing.T) {
	b, err := NewOffheapBuilder[int8](nil, 4, WithNulls())
	require.NoError(t, err)
	defer b.Release()

	assert.ErrorIs(t, b.CloseEntry(), ErrNoOpenEntry)
	require.NoError(t, b.WriteValue(1))
	assert.ErrorIs(t, b.WriteValue(2), ErrUnclosedEntry)
	assert.ErrorIs(t, b.AppendNull(), ErrUnclosedEntry)
	_, err = b.Build()
	assert.ErrorIs(t, err, ErrUnclosedEntry)
	require.NoError(t, b.CloseEntry())
	assert.Equal(t, 1, b.PositionCount())
}

func TestOffheapBuilder_ClosedAfterBuild(t *testing.T) {
	b, err := NewOffheapBuilder[int32](nil, 1)
	require.NoError(t, err)
	blk, err := b.Build()
	require.NoError(t, err)
	defer blk.Release()

	assert.ErrorIs(t, b.Append(1), ErrBuilderClosed)
	_, err = b.Build()
	assert.ErrorIs(t, err, ErrBuilderClosed)
	_, _, err = b.Get(0)
	assert.ErrorIs(t, err, ErrBuilderClosed)
	b.Release()
}

func TestOffheapBuilder_InvalidCapacity(t *testing.T) {
	_, err := NewOffheapBuilder[int32](nil, -1)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
