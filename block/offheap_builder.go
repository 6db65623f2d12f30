package block

import (
	"fmt"

	"github.com/hupe1980/memdb/internal/conv"
	"github.com/hupe1980/memdb/offheap"
)

type builderOptions struct {
	nullable bool
}

// BuilderOption configures an OffheapBuilder.
type BuilderOption func(*builderOptions)

// WithNulls allocates a validity map so the builder accepts null entries.
func WithNulls() BuilderOption {
	return func(o *builderOptions) {
		o.nullable = true
	}
}

// OffheapBuilder appends up to a fixed capacity of values into off-heap
// storage and publishes them as an OffheapBlock. A builder is not safe for
// concurrent use.
type OffheapBuilder[T Value] struct {
	capacity      int
	positionCount int
	values        *offheap.Buffer
	valueIsNull   *ValidityMap

	pending      bool
	pendingValue T
	closed       bool
}

// NewOffheapBuilder allocates storage for capacity values.
func NewOffheapBuilder[T Value](alloc *offheap.Allocator, capacity int, opts ...BuilderOption) (*OffheapBuilder[T], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: capacity %d is negative", ErrInvalidWindow, capacity)
	}
	var o builderOptions
	for _, opt := range opts {
		opt(&o)
	}

	byteLength, err := conv.MulInt(capacity, widthOf[T]())
	if err != nil {
		return nil, fmt.Errorf("%w: capacity %d: %w", ErrInvalidWindow, capacity, err)
	}
	values, err := alloc.Allocate(byteLength)
	if err != nil {
		return nil, fmt.Errorf("block: allocate values: %w", err)
	}

	b := &OffheapBuilder[T]{capacity: capacity, values: values}
	if o.nullable {
		v, err := NewValidityMap(alloc, capacity)
		if err != nil {
			values.Release()
			return nil, err
		}
		b.valueIsNull = v
	}
	return b, nil
}

// Capacity returns the maximum number of entries.
func (b *OffheapBuilder[T]) Capacity() int { return b.capacity }

// PositionCount returns the number of committed entries.
func (b *OffheapBuilder[T]) PositionCount() int { return b.positionCount }

// IsFull reports whether no more entries fit.
func (b *OffheapBuilder[T]) IsFull() bool { return b.positionCount == b.capacity }

// Nullable reports whether the builder accepts nulls.
func (b *OffheapBuilder[T]) Nullable() bool { return b.valueIsNull != nil }

func (b *OffheapBuilder[T]) checkAppend() error {
	switch {
	case b.closed:
		return ErrBuilderClosed
	case b.pending:
		return ErrUnclosedEntry
	case b.positionCount >= b.capacity:
		return fmt.Errorf("%w: capacity %d", ErrCapacityExceeded, b.capacity)
	}
	return nil
}

// Append adds a present value.
func (b *OffheapBuilder[T]) Append(v T) error {
	if err := b.checkAppend(); err != nil {
		return err
	}
	offheap.Store(b.values, b.positionCount*widthOf[T](), v)
	b.positionCount++
	return nil
}

// AppendNull adds a null entry.
func (b *OffheapBuilder[T]) AppendNull() error {
	if err := b.checkAppend(); err != nil {
		return err
	}
	if b.valueIsNull == nil {
		return ErrNotNullable
	}
	var zero T
	offheap.Store(b.values, b.positionCount*widthOf[T](), zero)
	b.valueIsNull.set(b.positionCount, true)
	b.positionCount++
	return nil
}

// WriteValue stages v as the current entry.
func (b *OffheapBuilder[T]) WriteValue(v T) error {
	if err := b.checkAppend(); err != nil {
		return err
	}
	b.pending = true
	b.pendingValue = v
	return nil
}

// CloseEntry commits the staged entry.
func (b *OffheapBuilder[T]) CloseEntry() error {
	if b.closed {
		return ErrBuilderClosed
	}
	if !b.pending {
		return ErrNoOpenEntry
	}
	b.pending = false
	return b.Append(b.pendingValue)
}

// Get returns an already appended entry.
func (b *OffheapBuilder[T]) Get(position int) (T, bool, error) {
	var zero T
	if b.closed {
		return zero, false, ErrBuilderClosed
	}
	if err := checkReadablePosition(position, b.positionCount); err != nil {
		return zero, false, err
	}
	return offheap.Load[T](b.values, position*widthOf[T]()), b.valueIsNull.IsNull(position), nil
}

// Build publishes the appended entries as an OffheapBlock. Storage ownership
// moves to the block; the builder is closed afterwards. A builder that is
// not full publishes a block that keeps its whole capacity alive.
func (b *OffheapBuilder[T]) Build() (*OffheapBlock[T], error) {
	if b.closed {
		return nil, ErrBuilderClosed
	}
	if b.pending {
		return nil, ErrUnclosedEntry
	}
	b.closed = true
	blk := newOffheapBlock[T](0, b.positionCount, b.valueIsNull, b.values)
	b.values, b.valueIsNull = nil, nil
	return blk, nil
}

// Release abandons an unbuilt builder and frees its storage.
func (b *OffheapBuilder[T]) Release() {
	if b.closed {
		return
	}
	b.closed = true
	b.values.Release()
	b.valueIsNull.Release()
	b.values, b.valueIsNull = nil, nil
}
