package offheap

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/hupe1980/memdb/internal/mem"
	"github.com/hupe1980/memdb/internal/mmap"
)

// MemoryAcquirer reserves and returns memory against a budget.
// resource.Controller implements it.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Metrics receives allocation events.
type Metrics interface {
	RecordAllocate(bytes int64, err error)
	RecordRelease(bytes int64)
}

// Stats tracks allocator usage.
type Stats struct {
	LiveBuffers   int64 // Current: buffers with at least one reference
	LiveBytes     int64 // Current: physical bytes mapped
	TotalAllocs   uint64
	TotalReleases uint64
	FailedAllocs  uint64
}

// Allocator hands out off-heap buffers and accounts for them.
//
// A nil *Allocator is valid: it allocates without budget, metrics or logging.
type Allocator struct {
	acquirer MemoryAcquirer
	metrics  Metrics
	logger   *slog.Logger

	closed        atomic.Bool
	liveBuffers   atomic.Int64
	liveBytes     atomic.Int64
	totalAllocs   atomic.Uint64
	totalReleases atomic.Uint64
	failedAllocs  atomic.Uint64
}

// Option is a configuration option for Allocator.
type Option func(*Allocator)

// WithMemoryAcquirer sets the memory budget the allocator reserves against.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Allocator) {
		a.acquirer = acquirer
	}
}

// WithMetrics sets the allocation metrics sink.
func WithMetrics(m Metrics) Option {
	return func(a *Allocator) {
		a.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAllocator creates an allocator.
func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate reserves byteLength bytes of off-heap memory. The content is
// zero-filled. The returned buffer carries one reference owned by the caller.
func (a *Allocator) Allocate(byteLength int) (*Buffer, error) {
	if byteLength < 0 || byteLength > math.MaxInt-mem.PageSize() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, byteLength)
	}
	if a != nil && a.closed.Load() {
		return nil, ErrAllocatorClosed
	}

	b := &Buffer{alloc: a}
	b.refs.Store(1)

	if byteLength == 0 {
		a.track(0)
		return b, nil
	}

	size := mem.PageAlign(byteLength)
	if a != nil && a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(int64(size)); err != nil {
			a.fail(byteLength, err)
			return nil, fmt.Errorf("offheap: reserve %d bytes: %w", size, err)
		}
	}

	mapping, err := mmap.MapAnon(size)
	if err != nil {
		if a != nil && a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(size))
		}
		a.fail(byteLength, err)
		return nil, fmt.Errorf("offheap: map %d bytes: %w", size, err)
	}

	b.mapping = mapping
	b.requested = byteLength
	b.size = size
	b.bytes = mapping.Bytes()[:byteLength:byteLength]
	a.track(size)
	return b, nil
}

func (a *Allocator) track(size int) {
	if a == nil {
		return
	}
	a.liveBuffers.Add(1)
	a.liveBytes.Add(int64(size))
	a.totalAllocs.Add(1)
	if a.metrics != nil {
		a.metrics.RecordAllocate(int64(size), nil)
	}
}

func (a *Allocator) fail(byteLength int, err error) {
	if a == nil {
		return
	}
	a.failedAllocs.Add(1)
	if a.metrics != nil {
		a.metrics.RecordAllocate(int64(byteLength), err)
	}
	a.log().Warn("off-heap allocation failed", "bytes", byteLength, "error", err)
}

func (a *Allocator) free(size int, unmapErr error) {
	if a == nil {
		return
	}
	if a.acquirer != nil {
		a.acquirer.ReleaseMemory(int64(size))
	}
	a.liveBuffers.Add(-1)
	a.liveBytes.Add(-int64(size))
	a.totalReleases.Add(1)
	if a.metrics != nil {
		a.metrics.RecordRelease(int64(size))
	}
	if unmapErr != nil {
		a.log().Error("off-heap unmap failed", "bytes", size, "error", unmapErr)
	}
}

func (a *Allocator) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// Stats returns the current allocator statistics.
func (a *Allocator) Stats() Stats {
	if a == nil {
		return Stats{}
	}
	return Stats{
		LiveBuffers:   a.liveBuffers.Load(),
		LiveBytes:     a.liveBytes.Load(),
		TotalAllocs:   a.totalAllocs.Load(),
		TotalReleases: a.totalReleases.Load(),
		FailedAllocs:  a.failedAllocs.Load(),
	}
}

// Close rejects further allocations. It returns ErrLeaked if buffers are
// still referenced; those buffers stay valid until their owners release them.
func (a *Allocator) Close() error {
	if a == nil || a.closed.Swap(true) {
		return nil
	}
	stats := a.Stats()
	if stats.LiveBuffers > 0 {
		a.log().Warn("off-heap buffers still referenced at close",
			"buffers", stats.LiveBuffers,
			"bytes", stats.LiveBytes,
		)
		return fmt.Errorf("%w: %d buffers, %d bytes", ErrLeaked, stats.LiveBuffers, stats.LiveBytes)
	}
	return nil
}

func (a *Allocator) String() string {
	stats := a.Stats()
	return fmt.Sprintf(
		"Allocator{live: %d, mapped: %.2f MB, allocs: %d, releases: %d, failed: %d}",
		stats.LiveBuffers,
		float64(stats.LiveBytes)/(1024*1024),
		stats.TotalAllocs,
		stats.TotalReleases,
		stats.FailedAllocs,
	)
}
