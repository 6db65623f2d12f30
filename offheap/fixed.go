package offheap

import "unsafe"

// Fixed is the set of fixed-width types that can be stored in a Buffer.
type Fixed interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// SizeOf returns the width in bytes of T.
func SizeOf[T Fixed]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Load reads a T at byteOffset in native byte order.
// Panics if the value does not lie within the logical window.
func Load[T Fixed](b *Buffer, byteOffset int) T {
	size := SizeOf[T]()
	p := b.bytes[byteOffset : byteOffset+size : byteOffset+size]
	return *(*T)(unsafe.Pointer(&p[0])) //nolint:gosec // unsafe is required for typed off-heap access
}

// Store writes v at byteOffset in native byte order.
// Panics if the value does not lie within the logical window.
func Store[T Fixed](b *Buffer, byteOffset int, v T) {
	size := SizeOf[T]()
	p := b.bytes[byteOffset : byteOffset+size : byteOffset+size]
	*(*T)(unsafe.Pointer(&p[0])) = v //nolint:gosec // unsafe is required for typed off-heap access
}

// CopyFrom copies elementCount values of src, starting at elementOffset, into
// the buffer at byteOffset.
func CopyFrom[T Fixed](b *Buffer, byteOffset int, src []T, elementOffset, elementCount int) {
	if elementCount == 0 {
		return
	}
	values := src[elementOffset : elementOffset+elementCount]
	n := elementCount * SizeOf[T]()
	dst := b.bytes[byteOffset : byteOffset+n]
	copy(dst, unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), n)) //nolint:gosec // unsafe is required for bulk copy-in
}

// CopyTo fills dst with len(dst) values read from the buffer at byteOffset.
func CopyTo[T Fixed](dst []T, b *Buffer, byteOffset int) {
	if len(dst) == 0 {
		return
	}
	n := len(dst) * SizeOf[T]()
	src := b.bytes[byteOffset : byteOffset+n]
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), n), src) //nolint:gosec // unsafe is required for bulk copy-out
}
