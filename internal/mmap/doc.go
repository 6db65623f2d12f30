// Package mmap provides memory mappings that live outside the Go heap.
//
// # Anonymous Mappings
//
// MapAnon creates read-write anonymous mappings. They back every off-heap
// buffer: the garbage collector never scans or moves them, and the memory is
// returned to the operating system only when Close is called.
//
//	m, err := mmap.MapAnon(64 * 1024)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // zero-filled, len(data) == 64 KiB
//
// # File Mappings
//
// Open maps a file read-only. The local blob store uses it to restore spilled
// pages without copying them through kernel buffers.
//
// # Platform Support
//
//   - Unix: mmap(2), with madvise(2) read-ahead hints
//   - Windows: CreateFileMapping/MapViewOfFile and VirtualAlloc (madvise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent read access. Close is idempotent and
// protected by an atomic flag. Callers must ensure no goroutine uses Bytes()
// after Close returns.
package mmap
