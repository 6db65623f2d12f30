package offheap

import (
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/memdb/internal/mmap"
)

// Buffer is a contiguous off-heap byte region with an explicit reference count.
type Buffer struct {
	bytes     []byte // logical window
	mapping   *mmap.Mapping
	requested int // bytes asked of the allocator
	size      int // physical bytes kept alive
	refs    atomic.Int32
	alloc   *Allocator
}

// Len returns the logical length of the buffer in bytes.
func (b *Buffer) Len() int {
	return len(b.bytes)
}

// RetainedSize returns the physical number of bytes kept alive by the buffer,
// including headroom past the logical length.
func (b *Buffer) RetainedSize() int64 {
	if b == nil {
		return 0
	}
	return int64(b.size)
}

// IsCompact reports whether the logical length is the whole requested
// allocation. Rounding up to the page size is not reclaimable headroom: a
// copy of the same length would be rounded the same way.
func (b *Buffer) IsCompact() bool {
	return len(b.bytes) == b.requested
}

// Refs returns the current number of references.
func (b *Buffer) Refs() int32 {
	return b.refs.Load()
}

// Released reports whether the last reference has been dropped.
func (b *Buffer) Released() bool {
	return b.refs.Load() <= 0
}

// Retain adds a reference and returns the buffer for chaining.
// Retaining a released buffer panics.
func (b *Buffer) Retain() *Buffer {
	for {
		n := b.refs.Load()
		if n <= 0 {
			panic("offheap: retain of released buffer")
		}
		if b.refs.CompareAndSwap(n, n+1) {
			return b
		}
	}
}

// Release drops a reference. The memory is unmapped when the last reference
// is dropped. Releasing more often than retaining panics.
func (b *Buffer) Release() {
	n := b.refs.Add(-1)
	switch {
	case n > 0:
		return
	case n < 0:
		panic("offheap: buffer released more than once")
	}

	b.bytes = nil
	var err error
	if b.mapping != nil {
		err = b.mapping.Close()
		b.mapping = nil
	}
	b.alloc.free(b.size, err)
}

// Bytes returns the logical byte window. The slice is valid only while the
// caller holds a reference.
func (b *Buffer) Bytes() []byte {
	return b.bytes
}

// Byte returns the byte at byteOffset.
func (b *Buffer) Byte(byteOffset int) byte {
	return b.bytes[byteOffset]
}

// SetByte stores v at byteOffset.
func (b *Buffer) SetByte(byteOffset int, v byte) {
	b.bytes[byteOffset] = v
}

func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer{len: %d, retained: %d, refs: %d}", len(b.bytes), b.size, b.refs.Load())
}
