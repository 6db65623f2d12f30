package memdb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/memdb/block"
	"github.com/hupe1980/memdb/offheap"
	"github.com/hupe1980/memdb/page"
	"github.com/hupe1980/memdb/resource"
	"github.com/hupe1980/memdb/spill"
)

// Runtime owns the shared machinery blocks are built on: the memory
// controller, the off-heap allocator, the page frame serde and, when a
// spill store is configured, the spiller.
//
// Runtime is safe for concurrent use. Builders it hands out are not.
type Runtime struct {
	controller *resource.Controller
	allocator  *offheap.Allocator
	serde      *page.Serde
	spiller    *spill.Spiller
	metrics    MetricsCollector
	logger     *Logger
	closed     atomic.Bool
}

// Stats is a snapshot of runtime resource usage.
type Stats struct {
	MemoryUsage     int64
	PeakMemoryUsage int64
	MemoryLimit     int64
	Allocator       offheap.Stats
}

// New creates a Runtime.
func New(optFns ...Option) *Runtime {
	o := applyOptions(optFns)

	r := &Runtime{
		controller: resource.NewController(o.resources),
		metrics:    o.metricsCollector,
		logger:     o.logger,
	}
	r.allocator = offheap.NewAllocator(
		offheap.WithMemoryAcquirer(r.controller),
		offheap.WithMetrics(r.metrics),
		offheap.WithLogger(r.logger.WithComponent("offheap").Logger),
	)
	r.serde = page.NewSerde(
		page.WithCompression(o.compression),
		page.WithAllocator(r.allocator),
		page.WithLogger(r.logger.WithComponent("page").Logger),
	)
	if o.spillStore != nil {
		spillOpts := []spill.Option{
			spill.WithSerde(r.serde),
			spill.WithController(r.controller),
			spill.WithMetrics(r.metrics),
			spill.WithLogger(r.logger.WithComponent("spill").Logger),
		}
		if o.spillPrefix != "" {
			spillOpts = append(spillOpts, spill.WithPrefix(o.spillPrefix))
		}
		r.spiller = spill.New(o.spillStore, spillOpts...)
	}

	r.logger.Debug("runtime created",
		"memory_limit", o.resources.MemoryLimitBytes,
		"workers", r.controller.MaxBackgroundWorkers(),
		"compression", o.compression.String(),
		"spill", r.spiller != nil,
	)
	return r
}

// Allocator returns the off-heap allocator backing this runtime.
func (r *Runtime) Allocator() *offheap.Allocator { return r.allocator }

// Controller returns the resource controller.
func (r *Runtime) Controller() *resource.Controller { return r.controller }

// Serde returns the page frame serde.
func (r *Runtime) Serde() *page.Serde { return r.serde }

// Logger returns the runtime logger.
func (r *Runtime) Logger() *Logger { return r.logger }

// NewBuilder returns an off-heap builder for capacity positions whose
// memory is charged against r's memory limit.
func NewBuilder[T block.Value](r *Runtime, capacity int, opts ...block.BuilderOption) (*block.OffheapBuilder[T], error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	b, err := block.NewOffheapBuilder[T](r.allocator, capacity, opts...)
	if err != nil {
		return nil, r.translateError(err)
	}
	return b, nil
}

// NewBlock copies values (and optional null flags) into a new off-heap block.
func NewBlock[T block.Value](r *Runtime, values []T, valueIsNull []bool) (*block.OffheapBlock[T], error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	b, err := block.NewOffheapBlockFromSlice(r.allocator, values, valueIsNull)
	if err != nil {
		return nil, r.translateError(err)
	}
	return b, nil
}

// Compact returns a compact copy of b, or b itself with an extra reference
// when it already is compact. The caller releases the result.
func (r *Runtime) Compact(ctx context.Context, b block.Untyped) (block.Untyped, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()
	before := b.RetainedSizeInBytes()

	out, err := block.CopyRegion(b, 0, b.PositionCount())
	err = r.translateError(err)
	var after int64
	if err == nil {
		after = out.RetainedSizeInBytes()
	}
	r.metrics.RecordCompaction(before, after, time.Since(start), err)
	r.logger.LogCompact(ctx, 1, before, after, err)
	return out, err
}

// CompactPage compacts every channel of p, running up to the configured
// number of background workers in parallel. The caller keeps ownership of p
// and owns the returned page.
func (r *Runtime) CompactPage(ctx context.Context, p *page.Page) (*page.Page, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()
	before := p.RetainedSizeInBytes()

	out, err := p.Compact(ctx, r.controller.MaxBackgroundWorkers())
	err = r.translateError(err)
	var after int64
	if err == nil {
		after = out.RetainedSizeInBytes()
	}
	r.metrics.RecordCompaction(before, after, time.Since(start), err)
	r.logger.LogCompact(ctx, p.ChannelCount(), before, after, err)
	return out, err
}

// Spill writes p to the spill store and returns its name. The caller keeps
// ownership of p.
func (r *Runtime) Spill(ctx context.Context, p *page.Page) (string, error) {
	if err := r.checkSpill(); err != nil {
		return "", err
	}
	name, err := r.spiller.Spill(ctx, p)
	return name, r.translateError(err)
}

// Restore reads back a page written by Spill. The caller owns the result.
func (r *Runtime) Restore(ctx context.Context, name string) (*page.Page, error) {
	if err := r.checkSpill(); err != nil {
		return nil, err
	}
	p, err := r.spiller.Restore(ctx, name)
	if err != nil {
		return nil, r.translateError(err)
	}
	return p, nil
}

// DeleteSpilled removes a spilled page.
func (r *Runtime) DeleteSpilled(ctx context.Context, name string) error {
	if err := r.checkSpill(); err != nil {
		return err
	}
	return r.spiller.Delete(ctx, name)
}

// SpilledPages lists the pages spilled by this runtime.
func (r *Runtime) SpilledPages(ctx context.Context) ([]string, error) {
	if err := r.checkSpill(); err != nil {
		return nil, err
	}
	return r.spiller.List(ctx)
}

func (r *Runtime) checkSpill() error {
	if r.closed.Load() {
		return ErrClosed
	}
	if r.spiller == nil {
		return ErrSpillDisabled
	}
	return nil
}

// Stats returns current resource usage.
func (r *Runtime) Stats() Stats {
	return Stats{
		MemoryUsage:     r.controller.MemoryUsage(),
		PeakMemoryUsage: r.controller.PeakMemoryUsage(),
		MemoryLimit:     r.controller.MemoryLimit(),
		Allocator:       r.allocator.Stats(),
	}
}

// Close deletes the runtime's spilled pages and closes the allocator.
// It reports ErrLeaked when blocks are still referenced; their memory stays
// valid until the owners release them. Closing twice is a no-op.
func (r *Runtime) Close(ctx context.Context) error {
	if r.closed.Swap(true) {
		return nil
	}

	var errs []error
	if r.spiller != nil {
		if err := r.spiller.Cleanup(ctx); err != nil {
			errs = append(errs, fmt.Errorf("memdb: spill cleanup: %w", err))
		}
	}
	if err := r.allocator.Close(); err != nil {
		errs = append(errs, err)
	}
	err := errors.Join(errs...)

	r.logger.LogClose(ctx, r.Stats(), err)
	return err
}

func (r *Runtime) String() string {
	s := r.Stats()
	return fmt.Sprintf("Runtime{memory: %d/%d, peak: %d, live buffers: %d}",
		s.MemoryUsage, s.MemoryLimit, s.PeakMemoryUsage, s.Allocator.LiveBuffers)
}
