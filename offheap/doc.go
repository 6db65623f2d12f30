// Package offheap provides reference-counted byte buffers that live outside
// the Go heap.
//
// # Buffers
//
// A Buffer is a contiguous region carved from an anonymous memory mapping.
// The logical length is what callers asked for; the physical size is rounded
// up to whole pages and is what RetainedSize reports. A buffer is compact when
// its logical window is the whole requested length.
//
//	alloc := offheap.NewAllocator(offheap.WithMemoryAcquirer(rc))
//	buf, err := alloc.Allocate(4 * 1024)
//	if err != nil { ... }
//	defer buf.Release()
//
//	offheap.Store[int32](buf, 8, 42)
//	v := offheap.Load[int32](buf, 8) // 42
//
// # Ownership
//
// A new buffer carries one reference owned by the caller. Every additional
// owner (for example a zero-copy view over the same memory) calls Retain and
// later Release. The mapping is unmapped, and its bytes returned to the
// MemoryAcquirer, exactly once: when the last reference is dropped. Releasing
// more often than retaining panics.
//
// Scope collects releasers and drops each of them exactly once when the scope
// closes, which is the usual way an execution frame owns its blocks.
//
// # Contract Violations
//
// Load, Store, CopyFrom and CopyTo do not return errors. Out-of-range offsets
// and access after the final Release panic: they are caller bugs, not runtime
// conditions.
package offheap
