package block

import (
	"fmt"
	"io"
	"unsafe"
)

// CompactBlock is an immutable block backed by Go arrays sized exactly for
// its contents. It is the result of compaction and gather operations.
// Regions are views that share the backing arrays.
type CompactBlock[T Value] struct {
	values      []T
	valueIsNull []bool

	baseValues []T
	baseNulls  []bool

	sizeInBytes         int64
	retainedSizeInBytes int64
}

var (
	_ Block[int8]  = (*CompactBlock[int8])(nil)
	_ Block[int16] = (*CompactBlock[int16])(nil)
	_ Block[int32] = (*CompactBlock[int32])(nil)
	_ Block[int64] = (*CompactBlock[int64])(nil)
)

// NewCompactBlock takes ownership of values and the optional null array.
func NewCompactBlock[T Value](values []T, valueIsNull []bool) (*CompactBlock[T], error) {
	if valueIsNull != nil && len(valueIsNull) != len(values) {
		return nil, fmt.Errorf("%w: %d values, %d null flags", ErrInvalidWindow, len(values), len(valueIsNull))
	}
	return newCompactBlock(values[:len(values):len(values)], clipBools(valueIsNull)), nil
}

func clipBools(b []bool) []bool {
	if b == nil {
		return nil
	}
	return b[:len(b):len(b)]
}

func newCompactBlock[T Value](values []T, valueIsNull []bool) *CompactBlock[T] {
	return newCompactView(values, valueIsNull, values, valueIsNull)
}

func newCompactView[T Value](values []T, valueIsNull []bool, baseValues []T, baseNulls []bool) *CompactBlock[T] {
	b := &CompactBlock[T]{
		values:      values,
		valueIsNull: valueIsNull,
		baseValues:  baseValues,
		baseNulls:   baseNulls,
	}
	b.sizeInBytes = b.RegionSizeInBytes(0, len(values))
	b.retainedSizeInBytes = compactInstanceSize[T]() + b.valuesRetained() + int64(cap(baseNulls))
	return b
}

func singleValueBlock[T Value](v T, isNull bool) *CompactBlock[T] {
	var valueIsNull []bool
	if isNull {
		valueIsNull = []bool{true}
	}
	return newCompactBlock([]T{v}, valueIsNull)
}

func compactInstanceSize[T Value]() int64 {
	var b CompactBlock[T]
	return int64(unsafe.Sizeof(b))
}

func (b *CompactBlock[T]) valuesRetained() int64 {
	return int64(cap(b.baseValues)) * int64(widthOf[T]())
}

// Kind implements Untyped.
func (b *CompactBlock[T]) Kind() Kind { return KindOf[T]() }

// EncodingName implements Untyped.
func (b *CompactBlock[T]) EncodingName() string { return KindOf[T]().EncodingName() }

// PositionCount implements Untyped.
func (b *CompactBlock[T]) PositionCount() int { return len(b.values) }

// SizeInBytes implements Untyped.
func (b *CompactBlock[T]) SizeInBytes() int64 { return b.sizeInBytes }

// RegionSizeInBytes implements Untyped.
func (b *CompactBlock[T]) RegionSizeInBytes(_, length int) int64 {
	perPosition := int64(widthOf[T]())
	if b.valueIsNull != nil {
		perPosition++
	}
	return perPosition * int64(length)
}

// RetainedSizeInBytes implements Untyped.
func (b *CompactBlock[T]) RetainedSizeInBytes() int64 { return b.retainedSizeInBytes }

// RetainedBytesForEachPart implements Untyped.
func (b *CompactBlock[T]) RetainedBytesForEachPart(consumer func(part any, size int64)) {
	consumer(unsafe.SliceData(b.baseValues), b.valuesRetained())
	if b.baseNulls != nil {
		consumer(unsafe.SliceData(b.baseNulls), int64(cap(b.baseNulls)))
	}
	consumer(b, compactInstanceSize[T]())
}

// EstimatedDataSizeForStats implements Untyped.
func (b *CompactBlock[T]) EstimatedDataSizeForStats(position int) (int64, error) {
	isNull, err := b.IsNull(position)
	if err != nil || isNull {
		return 0, err
	}
	return int64(widthOf[T]()), nil
}

// IsCompact reports whether the block spans its whole backing arrays.
func (b *CompactBlock[T]) IsCompact() bool {
	return b.isCompactRegion(0, len(b.values))
}

func (b *CompactBlock[T]) isCompactRegion(offset, length int) bool {
	return offset == 0 &&
		length == len(b.values) &&
		unsafe.SliceData(b.values) == unsafe.SliceData(b.baseValues) &&
		cap(b.baseValues) == length &&
		(b.baseNulls == nil || cap(b.baseNulls) == length)
}

// MayHaveNull implements Untyped.
func (b *CompactBlock[T]) MayHaveNull() bool { return b.valueIsNull != nil }

// IsNull implements Untyped.
func (b *CompactBlock[T]) IsNull(position int) (bool, error) {
	if err := checkReadablePosition(position, len(b.values)); err != nil {
		return false, err
	}
	return b.valueIsNull != nil && b.valueIsNull[position], nil
}

// Get implements Block.
func (b *CompactBlock[T]) Get(position int) (T, bool, error) {
	if err := checkReadablePosition(position, len(b.values)); err != nil {
		var zero T
		return zero, false, err
	}
	return b.values[position], b.valueIsNull != nil && b.valueIsNull[position], nil
}

// Values returns the backing values of the window. The slice must not be modified.
func (b *CompactBlock[T]) Values() []T { return b.values }

// WritePositionTo implements Untyped.
func (b *CompactBlock[T]) WritePositionTo(position int, w io.Writer) error {
	v, isNull, err := b.Get(position)
	if err != nil {
		return err
	}
	return writeEntry(w, v, isNull)
}

// WritePositionToBuilder implements Block.
func (b *CompactBlock[T]) WritePositionToBuilder(position int, vb ValueBuilder[T]) error {
	v, isNull, err := b.Get(position)
	if err != nil {
		return err
	}
	return appendEntry(vb, v, isNull)
}

// GetRegion implements Block.
func (b *CompactBlock[T]) GetRegion(offset, length int) (Block[T], error) {
	if err := checkValidRegion(len(b.values), offset, length); err != nil {
		return nil, err
	}
	end := offset + length
	var valueIsNull []bool
	if b.valueIsNull != nil {
		valueIsNull = b.valueIsNull[offset:end:end]
	}
	return newCompactView(b.values[offset:end:end], valueIsNull, b.baseValues, b.baseNulls), nil
}

// CopyRegion implements Block.
func (b *CompactBlock[T]) CopyRegion(offset, length int) (Block[T], error) {
	if err := checkValidRegion(len(b.values), offset, length); err != nil {
		return nil, err
	}
	if b.isCompactRegion(offset, length) {
		return b, nil
	}
	values := make([]T, length)
	copy(values, b.values[offset:offset+length])
	var valueIsNull []bool
	if b.valueIsNull != nil {
		valueIsNull = make([]bool, length)
		copy(valueIsNull, b.valueIsNull[offset:offset+length])
	}
	return newCompactBlock(values, valueIsNull), nil
}

// CopyPositions implements Block.
func (b *CompactBlock[T]) CopyPositions(positions []int, offset, length int) (Block[T], error) {
	if err := checkArrayRange(len(positions), offset, length); err != nil {
		return nil, err
	}
	selected := positions[offset : offset+length]
	for _, p := range selected {
		if err := checkReadablePosition(p, len(b.values)); err != nil {
			return nil, err
		}
	}
	values := make([]T, length)
	var valueIsNull []bool
	if b.valueIsNull != nil {
		valueIsNull = make([]bool, length)
	}
	for i, p := range selected {
		values[i] = b.values[p]
		if valueIsNull != nil {
			valueIsNull[i] = b.valueIsNull[p]
		}
	}
	return newCompactBlock(values, valueIsNull), nil
}

// GetSingleValueBlock implements Block.
func (b *CompactBlock[T]) GetSingleValueBlock(position int) (Block[T], error) {
	v, isNull, err := b.Get(position)
	if err != nil {
		return nil, err
	}
	return singleValueBlock(v, isNull), nil
}

// Release implements Untyped. Heap-backed blocks hold no off-heap storage.
func (b *CompactBlock[T]) Release() {}

func (b *CompactBlock[T]) String() string {
	return fmt.Sprintf("CompactBlock[%s]{positionCount=%d}", b.EncodingName(), len(b.values))
}
