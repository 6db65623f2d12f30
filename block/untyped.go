package block

import "fmt"

// typedOps lets kind-independent callers reach the typed block operations.
type typedOps interface {
	regionUntyped(offset, length int) (Untyped, error)
	copyRegionUntyped(offset, length int) (Untyped, error)
	copyPositionsUntyped(positions []int, offset, length int) (Untyped, error)
	singleValueUntyped(position int) (Untyped, error)
}

func untyped[T Value](b Block[T], err error) (Untyped, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (b *OffheapBlock[T]) regionUntyped(offset, length int) (Untyped, error) {
	return untyped(b.GetRegion(offset, length))
}

func (b *OffheapBlock[T]) copyRegionUntyped(offset, length int) (Untyped, error) {
	return untyped(b.CopyRegion(offset, length))
}

func (b *OffheapBlock[T]) copyPositionsUntyped(positions []int, offset, length int) (Untyped, error) {
	return untyped(b.CopyPositions(positions, offset, length))
}

func (b *OffheapBlock[T]) singleValueUntyped(position int) (Untyped, error) {
	return untyped(b.GetSingleValueBlock(position))
}

func (b *CompactBlock[T]) regionUntyped(offset, length int) (Untyped, error) {
	return untyped(b.GetRegion(offset, length))
}

func (b *CompactBlock[T]) copyRegionUntyped(offset, length int) (Untyped, error) {
	return untyped(b.CopyRegion(offset, length))
}

func (b *CompactBlock[T]) copyPositionsUntyped(positions []int, offset, length int) (Untyped, error) {
	return untyped(b.CopyPositions(positions, offset, length))
}

func (b *CompactBlock[T]) singleValueUntyped(position int) (Untyped, error) {
	return untyped(b.GetSingleValueBlock(position))
}

func opsOf(b Untyped) (typedOps, error) {
	ops, ok := b.(typedOps)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedBlock, b)
	}
	return ops, nil
}

// Region is GetRegion for an untyped block.
func Region(b Untyped, offset, length int) (Untyped, error) {
	ops, err := opsOf(b)
	if err != nil {
		return nil, err
	}
	return ops.regionUntyped(offset, length)
}

// CopyRegion is Block.CopyRegion for an untyped block.
func CopyRegion(b Untyped, offset, length int) (Untyped, error) {
	ops, err := opsOf(b)
	if err != nil {
		return nil, err
	}
	return ops.copyRegionUntyped(offset, length)
}

// CopyPositions is Block.CopyPositions for an untyped block.
func CopyPositions(b Untyped, positions []int, offset, length int) (Untyped, error) {
	ops, err := opsOf(b)
	if err != nil {
		return nil, err
	}
	return ops.copyPositionsUntyped(positions, offset, length)
}

// SingleValue is Block.GetSingleValueBlock for an untyped block.
func SingleValue(b Untyped, position int) (Untyped, error) {
	ops, err := opsOf(b)
	if err != nil {
		return nil, err
	}
	return ops.singleValueUntyped(position)
}

// As returns b as a Block[T] if it stores values of type T.
func As[T Value](b Untyped) (Block[T], bool) {
	typed, ok := b.(Block[T])
	return typed, ok
}
