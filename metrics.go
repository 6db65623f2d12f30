package memdb

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/memdb/offheap"
	"github.com/hupe1980/memdb/spill"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// A collector passed to the Runtime receives allocator events directly
// from the off-heap allocator and spill events from the spiller.
type MetricsCollector interface {
	// RecordAllocate is called after each off-heap allocation.
	// bytes is the mapped size on success, the requested size on failure.
	RecordAllocate(bytes int64, err error)

	// RecordRelease is called when an off-heap buffer is unmapped.
	RecordRelease(bytes int64)

	// RecordCompaction is called after each page compaction with the
	// retained sizes before and after.
	RecordCompaction(before, after int64, duration time.Duration, err error)

	// RecordSpill is called after each page is written to the spill store.
	RecordSpill(bytes int64, duration time.Duration, err error)

	// RecordRestore is called after each page is read back from the spill store.
	RecordRestore(bytes int64, duration time.Duration, err error)
}

var (
	_ offheap.Metrics = MetricsCollector(nil)
	_ spill.Metrics   = MetricsCollector(nil)
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAllocate(int64, error)                         {}
func (NoopMetricsCollector) RecordRelease(int64)                                 {}
func (NoopMetricsCollector) RecordCompaction(int64, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordSpill(int64, time.Duration, error)             {}
func (NoopMetricsCollector) RecordRestore(int64, time.Duration, error)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocCount          atomic.Int64
	AllocErrors         atomic.Int64
	AllocBytes          atomic.Int64
	ReleaseCount        atomic.Int64
	ReleaseBytes        atomic.Int64
	CompactionCount     atomic.Int64
	CompactionErrors    atomic.Int64
	CompactionReclaimed atomic.Int64
	SpillCount          atomic.Int64
	SpillErrors         atomic.Int64
	SpillBytes          atomic.Int64
	SpillTotalNanos     atomic.Int64
	RestoreCount        atomic.Int64
	RestoreErrors       atomic.Int64
	RestoreBytes        atomic.Int64
	RestoreTotalNanos   atomic.Int64
}

// RecordAllocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocate(bytes int64, err error) {
	if err != nil {
		b.AllocErrors.Add(1)
		return
	}
	b.AllocCount.Add(1)
	b.AllocBytes.Add(bytes)
}

// RecordRelease implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRelease(bytes int64) {
	b.ReleaseCount.Add(1)
	b.ReleaseBytes.Add(bytes)
}

// RecordCompaction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompaction(before, after int64, _ time.Duration, err error) {
	b.CompactionCount.Add(1)
	if err != nil {
		b.CompactionErrors.Add(1)
		return
	}
	if before > after {
		b.CompactionReclaimed.Add(before - after)
	}
}

// RecordSpill implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSpill(bytes int64, duration time.Duration, err error) {
	b.SpillCount.Add(1)
	b.SpillTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SpillErrors.Add(1)
		return
	}
	b.SpillBytes.Add(bytes)
}

// RecordRestore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRestore(bytes int64, duration time.Duration, err error) {
	b.RestoreCount.Add(1)
	b.RestoreTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RestoreErrors.Add(1)
		return
	}
	b.RestoreBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocCount:          b.AllocCount.Load(),
		AllocErrors:         b.AllocErrors.Load(),
		AllocBytes:          b.AllocBytes.Load(),
		ReleaseCount:        b.ReleaseCount.Load(),
		ReleaseBytes:        b.ReleaseBytes.Load(),
		CompactionCount:     b.CompactionCount.Load(),
		CompactionErrors:    b.CompactionErrors.Load(),
		CompactionReclaimed: b.CompactionReclaimed.Load(),
		SpillCount:          b.SpillCount.Load(),
		SpillErrors:         b.SpillErrors.Load(),
		SpillBytes:          b.SpillBytes.Load(),
		SpillAvgNanos:       avg(b.SpillTotalNanos.Load(), b.SpillCount.Load()),
		RestoreCount:        b.RestoreCount.Load(),
		RestoreErrors:       b.RestoreErrors.Load(),
		RestoreBytes:        b.RestoreBytes.Load(),
		RestoreAvgNanos:     avg(b.RestoreTotalNanos.Load(), b.RestoreCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocCount          int64
	AllocErrors         int64
	AllocBytes          int64
	ReleaseCount        int64
	ReleaseBytes        int64
	CompactionCount     int64
	CompactionErrors    int64
	CompactionReclaimed int64
	SpillCount          int64
	SpillErrors         int64
	SpillBytes          int64
	SpillAvgNanos       int64
	RestoreCount        int64
	RestoreErrors       int64
	RestoreBytes        int64
	RestoreAvgNanos     int64
}
