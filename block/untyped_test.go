package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntypedHelpers(t *testing.T) {
	var u Untyped
	blk, err := NewOffheapBlockFromSlice(nil, []int64{1, 2, 3}, nil)
	require.NoError(t, err)
	u = blk
	defer u.Release()

	region, err := Region(u, 1, 2)
	require.NoError(t, err)
	defer region.Release()
	assert.Equal(t, 2, region.PositionCount())

	copied, err := CopyRegion(region, 0, 2)
	require.NoError(t, err)
	defer copied.Release()
	typed, ok := As[int64](copied)
	require.True(t, ok)
	v, _, err := typed.Get(1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	_, ok = As[int32](copied)
	assert.False(t, ok)

	gathered, err := CopyPositions(u, []int{2, 0}, 0, 2)
	require.NoError(t, err)
	defer gathered.Release()
	assert.Equal(t, 2, gathered.PositionCount())

	single, err := SingleValue(u, 2)
	require.NoError(t, err)
	defer single.Release()
	assert.Equal(t, 1, single.PositionCount())

	_, err = Region(u, 2, 5)
	assert.ErrorIs(t, err, ErrInvalidRegion)
}

type foreignBlock struct{ Untyped }

func TestUntypedHelpers_Unsupported(t *testing.T) {
	_, err := Region(foreignBlock{}, 0, 0)
	assert.ErrorIs(t, err, ErrUnsupportedBlock)
}
