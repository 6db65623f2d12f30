package block

import (
	"fmt"
	"io"
)

// Untyped is the kind-independent view of a block. Pages hold channels of
// Untyped blocks and recover the typed form with a type switch or through the
// package-level helpers.
type Untyped interface {
	// Kind returns the kind of values stored in the block.
	Kind() Kind
	// EncodingName returns the stable name used to select the serializer.
	EncodingName() string
	// PositionCount returns the number of logical positions.
	PositionCount() int
	// SizeInBytes returns the logical data footprint.
	SizeInBytes() int64
	// RegionSizeInBytes returns the logical footprint of length positions.
	RegionSizeInBytes(offset, length int) int64
	// RetainedSizeInBytes returns the physical memory kept alive by the block.
	RetainedSizeInBytes() int64
	// RetainedBytesForEachPart reports every independently-sized part keyed by
	// identity so shared storage can be counted once.
	RetainedBytesForEachPart(consumer func(part any, size int64))
	// EstimatedDataSizeForStats returns the per-position size used by statistics.
	EstimatedDataSizeForStats(position int) (int64, error)
	// MayHaveNull reports whether the block carries a validity map.
	MayHaveNull() bool
	// IsNull reports whether the entry at position is null.
	IsNull(position int) (bool, error)
	// WritePositionTo writes the per-position wire form.
	WritePositionTo(position int, w io.Writer) error
	// Release drops the caller's reference. Every block handed out by a
	// constructor or block operation must be released exactly once.
	Release()

	fmt.Stringer
}

// Block is a typed, immutable sequence of fixed-width values with optional
// per-position nulls.
type Block[T Value] interface {
	Untyped

	// Get returns the value at position. The value of a null entry is
	// unspecified.
	Get(position int) (value T, isNull bool, err error)
	// WritePositionToBuilder appends the entry at position to b.
	WritePositionToBuilder(position int, b ValueBuilder[T]) error
	// GetRegion returns a view over [offset, offset+length) sharing storage.
	GetRegion(offset, length int) (Block[T], error)
	// CopyRegion returns [offset, offset+length) in storage sized exactly for
	// the region. An already-compact full-range request returns the receiver.
	CopyRegion(offset, length int) (Block[T], error)
	// CopyPositions gathers positions[offset:offset+length] into a new compact block.
	CopyPositions(positions []int, offset, length int) (Block[T], error)
	// GetSingleValueBlock returns a compact one-position block.
	GetSingleValueBlock(position int) (Block[T], error)
}

// ValueBuilder receives entries one at a time. A present entry is
// WriteValue followed by CloseEntry; a null entry is AppendNull.
type ValueBuilder[T Value] interface {
	WriteValue(v T) error
	CloseEntry() error
	AppendNull() error
}
