package block

import (
	"fmt"

	"github.com/hupe1980/memdb/offheap"
)

// ValidityMap is an off-heap null map with one byte per position.
// A non-zero byte marks the position as null. A nil *ValidityMap means
// "no nulls" and is valid to call.
type ValidityMap struct {
	buf *offheap.Buffer
}

// NewValidityMap allocates a validity map with room for capacity positions,
// all initially non-null.
func NewValidityMap(alloc *offheap.Allocator, capacity int) (*ValidityMap, error) {
	buf, err := alloc.Allocate(capacity)
	if err != nil {
		return nil, fmt.Errorf("block: allocate validity map: %w", err)
	}
	return &ValidityMap{buf: buf}, nil
}

// ValidityMapFromBools copies a boolean null array into off-heap memory.
func ValidityMapFromBools(alloc *offheap.Allocator, isNull []bool) (*ValidityMap, error) {
	v, err := NewValidityMap(alloc, len(isNull))
	if err != nil {
		return nil, err
	}
	for i, null := range isNull {
		if null {
			v.buf.SetByte(i, 1)
		}
	}
	return v, nil
}

// IsNull reports whether the entry at the given internal position is null.
func (v *ValidityMap) IsNull(position int) bool {
	if v == nil {
		return false
	}
	return v.buf.Byte(position) != 0
}

func (v *ValidityMap) set(position int, isNull bool) {
	var b byte
	if isNull {
		b = 1
	}
	v.buf.SetByte(position, b)
}

// Len returns the number of positions covered by the map.
func (v *ValidityMap) Len() int {
	if v == nil {
		return 0
	}
	return v.buf.Len()
}

// RetainedSize returns the physical bytes kept alive by the map.
func (v *ValidityMap) RetainedSize() int64 {
	if v == nil {
		return 0
	}
	return v.buf.RetainedSize()
}

// IsCompact reports whether the map's storage is exactly its length.
func (v *ValidityMap) IsCompact() bool {
	return v == nil || v.buf.IsCompact()
}

// HasNull reports whether any position in [offset, offset+length) is null.
func (v *ValidityMap) HasNull(offset, length int) bool {
	if v == nil {
		return false
	}
	for _, b := range v.buf.Bytes()[offset : offset+length] {
		if b != 0 {
			return true
		}
	}
	return false
}

// Retain adds a reference to the underlying storage.
func (v *ValidityMap) Retain() *ValidityMap {
	if v == nil {
		return nil
	}
	v.buf.Retain()
	return v
}

// Release drops a reference to the underlying storage.
func (v *ValidityMap) Release() {
	if v == nil {
		return
	}
	v.buf.Release()
}

// toBools copies length entries starting at offset into a Go array.
func (v *ValidityMap) toBools(offset, length int) []bool {
	out := make([]bool, length)
	for i, b := range v.buf.Bytes()[offset : offset+length] {
		out[i] = b != 0
	}
	return out
}

// part is the identity key used for retained-size accounting.
func (v *ValidityMap) part() any {
	return v.buf
}
