package block

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

func checkSelectable(positionCount int) error {
	if int64(positionCount) > math.MaxUint32 {
		return fmt.Errorf("%w: %d positions exceed selection range", ErrInvalidRegion, positionCount)
	}
	return nil
}

// NullPositions returns the positions of null entries.
func NullPositions(b Untyped) (*roaring.Bitmap, error) {
	n := b.PositionCount()
	if err := checkSelectable(n); err != nil {
		return nil, err
	}
	nulls := roaring.New()
	if !b.MayHaveNull() {
		return nulls, nil
	}
	for i := range n {
		isNull, err := b.IsNull(i)
		if err != nil {
			return nil, err
		}
		if isNull {
			nulls.Add(uint32(i)) //nolint:gosec // bounded by checkSelectable
		}
	}
	return nulls, nil
}

// NonNullPositions returns the positions of present entries.
func NonNullPositions(b Untyped) (*roaring.Bitmap, error) {
	nulls, err := NullPositions(b)
	if err != nil {
		return nil, err
	}
	present := roaring.New()
	present.AddRange(0, uint64(b.PositionCount())) //nolint:gosec // non-negative
	present.AndNot(nulls)
	return present, nil
}

// CopySelected gathers the selected positions, in ascending order, into a new
// compact block.
func CopySelected[T Value](b Block[T], selected *roaring.Bitmap) (Block[T], error) {
	if selected.IsEmpty() {
		return b.CopyPositions(nil, 0, 0)
	}
	if last := int(selected.Maximum()); last >= b.PositionCount() {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidPosition, last, b.PositionCount())
	}
	positions := SelectedPositions(selected)
	return b.CopyPositions(positions, 0, len(positions))
}

// SelectedPositions returns the members of selected in ascending order.
func SelectedPositions(selected *roaring.Bitmap) []int {
	positions := make([]int, 0, selected.GetCardinality())
	it := selected.Iterator()
	for it.HasNext() {
		positions = append(positions, int(it.Next()))
	}
	return positions
}

// SelectedSizeInBytes returns the logical size of the selected positions.
func SelectedSizeInBytes(b Untyped, selected *roaring.Bitmap) int64 {
	return b.RegionSizeInBytes(0, int(selected.GetCardinality())) //nolint:gosec // bounded by position count
}
