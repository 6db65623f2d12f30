package block

import "fmt"

// CompactBuilder accumulates entries into growable Go arrays. It has no
// capacity limit and is used when the final position count is unknown.
type CompactBuilder[T Value] struct {
	values      []T
	valueIsNull []bool

	pending      bool
	pendingValue T
	closed       bool
}

// NewCompactBuilder returns a builder with room for expectedEntries.
func NewCompactBuilder[T Value](expectedEntries int) *CompactBuilder[T] {
	return &CompactBuilder[T]{values: make([]T, 0, max(expectedEntries, 0))}
}

// PositionCount returns the number of committed entries.
func (b *CompactBuilder[T]) PositionCount() int { return len(b.values) }

func (b *CompactBuilder[T]) checkAppend() error {
	if b.closed {
		return ErrBuilderClosed
	}
	if b.pending {
		return ErrUnclosedEntry
	}
	return nil
}

// Append adds a present value.
func (b *CompactBuilder[T]) Append(v T) error {
	if err := b.checkAppend(); err != nil {
		return err
	}
	b.values = append(b.values, v)
	if b.valueIsNull != nil {
		b.valueIsNull = append(b.valueIsNull, false)
	}
	return nil
}

// AppendNull adds a null entry.
func (b *CompactBuilder[T]) AppendNull() error {
	if err := b.checkAppend(); err != nil {
		return err
	}
	if b.valueIsNull == nil {
		b.valueIsNull = make([]bool, len(b.values), cap(b.values))
	}
	var zero T
	b.values = append(b.values, zero)
	b.valueIsNull = append(b.valueIsNull, true)
	return nil
}

// WriteValue stages v as the current entry.
func (b *CompactBuilder[T]) WriteValue(v T) error {
	if err := b.checkAppend(); err != nil {
		return err
	}
	b.pending = true
	b.pendingValue = v
	return nil
}

// CloseEntry commits the staged entry.
func (b *CompactBuilder[T]) CloseEntry() error {
	if b.closed {
		return ErrBuilderClosed
	}
	if !b.pending {
		return ErrNoOpenEntry
	}
	b.pending = false
	return b.Append(b.pendingValue)
}

// Build publishes the entries as a compact block, trimming excess capacity.
func (b *CompactBuilder[T]) Build() (*CompactBlock[T], error) {
	if b.closed {
		return nil, ErrBuilderClosed
	}
	if b.pending {
		return nil, fmt.Errorf("%w: build with staged value", ErrUnclosedEntry)
	}
	b.closed = true

	values := b.values
	if cap(values) != len(values) {
		values = append(make([]T, 0, len(values)), values...)
	}
	var valueIsNull []bool
	if b.valueIsNull != nil {
		valueIsNull = append(make([]bool, 0, len(b.valueIsNull)), b.valueIsNull...)
	}
	b.values, b.valueIsNull = nil, nil
	return newCompactBlock(values, valueIsNull), nil
}
