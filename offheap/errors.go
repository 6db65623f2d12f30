package offheap

import "errors"

var (
	// ErrInvalidSize is returned when an allocation size is negative or too large.
	ErrInvalidSize = errors.New("offheap: invalid size")
	// ErrAllocatorClosed is returned when allocating from a closed allocator.
	ErrAllocatorClosed = errors.New("offheap: allocator is closed")
	// ErrLeaked is returned by Allocator.Close when buffers are still referenced.
	ErrLeaked = errors.New("offheap: buffers still referenced")
)
