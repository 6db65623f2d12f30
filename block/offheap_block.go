package block

import (
	"fmt"
	"io"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/memdb/offheap"
)

// OffheapBlock is an immutable window over off-heap value storage and an
// optional off-heap validity map.
//
// Views created by GetRegion share storage with their parent and keep it
// alive through the buffers' reference counts. CopyRegion compacts: unless
// the receiver already covers exactly its whole, compact storage, it copies
// the window into storage sized for the region.
type OffheapBlock[T Value] struct {
	arrayOffset   int
	positionCount int
	valueIsNull   *ValidityMap
	values        *offheap.Buffer

	sizeInBytes         int64
	retainedSizeInBytes int64
	refs                atomic.Int32
}

var (
	_ Block[int8]  = (*OffheapBlock[int8])(nil)
	_ Block[int16] = (*OffheapBlock[int16])(nil)
	_ Block[int32] = (*OffheapBlock[int32])(nil)
	_ Block[int64] = (*OffheapBlock[int64])(nil)
)

// NewOffheapBlock wraps existing storage. On success the block takes its own
// reference to values and valueIsNull; the caller keeps its references.
// valueIsNull may be nil.
func NewOffheapBlock[T Value](arrayOffset, positionCount int, valueIsNull *ValidityMap, values *offheap.Buffer) (*OffheapBlock[T], error) {
	if err := checkWindow[T](arrayOffset, positionCount, valueIsNull, values); err != nil {
		return nil, err
	}
	return newOffheapBlock[T](arrayOffset, positionCount, valueIsNull.Retain(), values.Retain()), nil
}

// NewOffheapBlockFromSlice copies values and an optional null array into new
// off-heap storage.
func NewOffheapBlockFromSlice[T Value](alloc *offheap.Allocator, values []T, valueIsNull []bool) (*OffheapBlock[T], error) {
	if valueIsNull != nil && len(valueIsNull) != len(values) {
		return nil, fmt.Errorf("%w: %d values, %d null flags", ErrInvalidWindow, len(values), len(valueIsNull))
	}
	buf, err := alloc.Allocate(len(values) * widthOf[T]())
	if err != nil {
		return nil, fmt.Errorf("block: allocate values: %w", err)
	}
	offheap.CopyFrom(buf, 0, values, 0, len(values))

	var validity *ValidityMap
	if valueIsNull != nil {
		validity, err = ValidityMapFromBools(alloc, valueIsNull)
		if err != nil {
			buf.Release()
			return nil, err
		}
	}
	return newOffheapBlock[T](0, len(values), validity, buf), nil
}

func checkWindow[T Value](arrayOffset, positionCount int, valueIsNull *ValidityMap, values *offheap.Buffer) error {
	switch {
	case arrayOffset < 0:
		return fmt.Errorf("%w: arrayOffset %d is negative", ErrInvalidWindow, arrayOffset)
	case positionCount < 0:
		return fmt.Errorf("%w: positionCount %d is negative", ErrInvalidWindow, positionCount)
	case values == nil:
		return fmt.Errorf("%w: values is nil", ErrInvalidWindow)
	case values.Len()/widthOf[T]()-arrayOffset < positionCount:
		return fmt.Errorf("%w: values holds %d entries, need %d from offset %d",
			ErrInvalidWindow, values.Len()/widthOf[T](), positionCount, arrayOffset)
	case valueIsNull != nil && valueIsNull.Len()-arrayOffset < positionCount:
		return fmt.Errorf("%w: validity map holds %d entries, need %d from offset %d",
			ErrInvalidWindow, valueIsNull.Len(), positionCount, arrayOffset)
	}
	return nil
}

// newOffheapBlock takes ownership of one reference of each buffer.
func newOffheapBlock[T Value](arrayOffset, positionCount int, valueIsNull *ValidityMap, values *offheap.Buffer) *OffheapBlock[T] {
	b := &OffheapBlock[T]{
		arrayOffset:   arrayOffset,
		positionCount: positionCount,
		valueIsNull:   valueIsNull,
		values:        values,
	}
	b.sizeInBytes = b.RegionSizeInBytes(0, positionCount)
	b.retainedSizeInBytes = offheapInstanceSize[T]() + values.RetainedSize() + valueIsNull.RetainedSize()
	b.refs.Store(1)
	return b
}

func offheapInstanceSize[T Value]() int64 {
	var b OffheapBlock[T]
	return int64(unsafe.Sizeof(b))
}

// Kind implements Untyped.
func (b *OffheapBlock[T]) Kind() Kind { return KindOf[T]() }

// EncodingName implements Untyped.
func (b *OffheapBlock[T]) EncodingName() string { return KindOf[T]().EncodingName() }

// PositionCount implements Untyped.
func (b *OffheapBlock[T]) PositionCount() int { return b.positionCount }

// ArrayOffset returns the window start within the underlying storage.
func (b *OffheapBlock[T]) ArrayOffset() int { return b.arrayOffset }

// SizeInBytes implements Untyped.
func (b *OffheapBlock[T]) SizeInBytes() int64 { return b.sizeInBytes }

// RegionSizeInBytes implements Untyped.
func (b *OffheapBlock[T]) RegionSizeInBytes(_, length int) int64 {
	perPosition := int64(widthOf[T]())
	if b.valueIsNull != nil {
		perPosition++
	}
	return perPosition * int64(length)
}

// RetainedSizeInBytes implements Untyped.
func (b *OffheapBlock[T]) RetainedSizeInBytes() int64 { return b.retainedSizeInBytes }

// RetainedBytesForEachPart implements Untyped.
func (b *OffheapBlock[T]) RetainedBytesForEachPart(consumer func(part any, size int64)) {
	consumer(b.values, b.values.RetainedSize())
	if b.valueIsNull != nil {
		consumer(b.valueIsNull.part(), b.valueIsNull.RetainedSize())
	}
	consumer(b, offheapInstanceSize[T]())
}

// EstimatedDataSizeForStats implements Untyped.
func (b *OffheapBlock[T]) EstimatedDataSizeForStats(position int) (int64, error) {
	isNull, err := b.IsNull(position)
	if err != nil || isNull {
		return 0, err
	}
	return int64(widthOf[T]()), nil
}

// IsCompact reports whether the block covers exactly its whole, compact storage.
func (b *OffheapBlock[T]) IsCompact() bool {
	return b.isCompactRegion(0, b.positionCount)
}

func (b *OffheapBlock[T]) isCompactRegion(offset, length int) bool {
	return b.arrayOffset+offset == 0 &&
		b.values.IsCompact() &&
		length*widthOf[T]() == b.values.Len() &&
		(b.valueIsNull == nil || (b.valueIsNull.IsCompact() && b.valueIsNull.Len() == length))
}

// MayHaveNull implements Untyped.
func (b *OffheapBlock[T]) MayHaveNull() bool { return b.valueIsNull != nil }

// IsNull implements Untyped.
func (b *OffheapBlock[T]) IsNull(position int) (bool, error) {
	if err := checkReadablePosition(position, b.positionCount); err != nil {
		return false, err
	}
	return b.valueIsNull.IsNull(position + b.arrayOffset), nil
}

// Get implements Block.
func (b *OffheapBlock[T]) Get(position int) (T, bool, error) {
	if err := checkReadablePosition(position, b.positionCount); err != nil {
		var zero T
		return zero, false, err
	}
	return b.value(position), b.valueIsNull.IsNull(position + b.arrayOffset), nil
}

func (b *OffheapBlock[T]) value(position int) T {
	return offheap.Load[T](b.values, (position+b.arrayOffset)*widthOf[T]())
}

// WritePositionTo implements Untyped.
func (b *OffheapBlock[T]) WritePositionTo(position int, w io.Writer) error {
	v, isNull, err := b.Get(position)
	if err != nil {
		return err
	}
	return writeEntry(w, v, isNull)
}

// WritePositionToBuilder implements Block.
func (b *OffheapBlock[T]) WritePositionToBuilder(position int, vb ValueBuilder[T]) error {
	v, isNull, err := b.Get(position)
	if err != nil {
		return err
	}
	return appendEntry(vb, v, isNull)
}

// GetRegion implements Block.
func (b *OffheapBlock[T]) GetRegion(offset, length int) (Block[T], error) {
	if err := checkValidRegion(b.positionCount, offset, length); err != nil {
		return nil, err
	}
	return newOffheapBlock[T](b.arrayOffset+offset, length, b.valueIsNull.Retain(), b.values.Retain()), nil
}

// CopyRegion implements Block.
func (b *OffheapBlock[T]) CopyRegion(offset, length int) (Block[T], error) {
	if err := checkValidRegion(b.positionCount, offset, length); err != nil {
		return nil, err
	}
	if b.isCompactRegion(offset, length) {
		b.retain()
		return b, nil
	}

	values := make([]T, length)
	offheap.CopyTo(values, b.values, (b.arrayOffset+offset)*widthOf[T]())
	var valueIsNull []bool
	if b.valueIsNull.HasNull(b.arrayOffset+offset, length) {
		valueIsNull = b.valueIsNull.toBools(b.arrayOffset+offset, length)
	}
	return newCompactBlock(values, valueIsNull), nil
}

// CopyPositions implements Block.
func (b *OffheapBlock[T]) CopyPositions(positions []int, offset, length int) (Block[T], error) {
	if err := checkArrayRange(len(positions), offset, length); err != nil {
		return nil, err
	}
	selected := positions[offset : offset+length]
	for _, p := range selected {
		if err := checkReadablePosition(p, b.positionCount); err != nil {
			return nil, err
		}
	}

	values := make([]T, length)
	var valueIsNull []bool
	if b.valueIsNull != nil {
		valueIsNull = make([]bool, length)
	}
	for i, p := range selected {
		values[i] = b.value(p)
		if valueIsNull != nil {
			valueIsNull[i] = b.valueIsNull.IsNull(p + b.arrayOffset)
		}
	}
	return newCompactBlock(values, valueIsNull), nil
}

// GetSingleValueBlock implements Block.
func (b *OffheapBlock[T]) GetSingleValueBlock(position int) (Block[T], error) {
	v, isNull, err := b.Get(position)
	if err != nil {
		return nil, err
	}
	return singleValueBlock(v, isNull), nil
}

func (b *OffheapBlock[T]) retain() {
	for {
		n := b.refs.Load()
		if n <= 0 {
			panic("block: retain of released block")
		}
		if b.refs.CompareAndSwap(n, n+1) {
			return
		}
	}
}

// Release implements Untyped. The storage references are dropped with the
// last block reference.
func (b *OffheapBlock[T]) Release() {
	n := b.refs.Add(-1)
	switch {
	case n > 0:
		return
	case n < 0:
		panic("block: block released more than once")
	}
	b.values.Release()
	b.valueIsNull.Release()
}

func (b *OffheapBlock[T]) String() string {
	return fmt.Sprintf("OffheapBlock[%s]{positionCount=%d}", b.EncodingName(), b.positionCount)
}
