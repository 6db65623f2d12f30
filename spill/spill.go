// Package spill moves pages out of off-heap memory into a blob store and
// back.
//
// Spilled pages are stored as page frames (see page.Serde) under a
// per-spiller prefix. Writes and reads are throttled by the IO budget of a
// resource.Controller and run in one of its background worker slots.
package spill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/hupe1980/memdb/blobstore"
	"github.com/hupe1980/memdb/page"
	"github.com/hupe1980/memdb/resource"
)

// ErrNotFound is returned when restoring a page that was never spilled or was deleted.
var ErrNotFound = blobstore.ErrNotFound

const pageSuffix = ".page"

// Metrics receives spill traffic statistics.
type Metrics interface {
	RecordSpill(bytes int64, duration time.Duration, err error)
	RecordRestore(bytes int64, duration time.Duration, err error)
}

// Spiller writes pages to and restores pages from a BlobStore.
// It is safe for concurrent use.
type Spiller struct {
	store      blobstore.BlobStore
	serde      *page.Serde
	controller *resource.Controller
	metrics    Metrics
	logger     *slog.Logger
	prefix     string
	seq        atomic.Uint64
}

// Option configures a Spiller.
type Option func(*Spiller)

// WithSerde sets the page serde (compression, allocator for restored pages).
func WithSerde(s *page.Serde) Option {
	return func(sp *Spiller) {
		if s != nil {
			sp.serde = s
		}
	}
}

// WithController throttles spill IO and bounds concurrent spills.
func WithController(c *resource.Controller) Option {
	return func(sp *Spiller) { sp.controller = c }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(sp *Spiller) { sp.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(sp *Spiller) {
		if l != nil {
			sp.logger = l
		}
	}
}

// WithPrefix sets the blob name prefix. The default is unique per Spiller.
func WithPrefix(prefix string) Option {
	return func(sp *Spiller) { sp.prefix = prefix }
}

// New returns a Spiller backed by store.
func New(store blobstore.BlobStore, opts ...Option) *Spiller {
	s := &Spiller{
		store:  store,
		serde:  page.NewSerde(),
		logger: slog.New(slog.DiscardHandler),
		prefix: "spill/" + strconv.FormatInt(time.Now().UnixNano(), 36) + "/",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prefix returns the blob name prefix used for spilled pages.
func (s *Spiller) Prefix() string { return s.prefix }

func (s *Spiller) nextName() string {
	return fmt.Sprintf("%s%016x%s", s.prefix, s.seq.Add(1), pageSuffix)
}

// Spill writes p to the store and returns the blob name. The caller keeps
// ownership of p.
func (s *Spiller) Spill(ctx context.Context, p *page.Page) (name string, err error) {
	start := time.Now()
	var written int64
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordSpill(written, time.Since(start), err)
		}
	}()

	if err := s.controller.AcquireBackground(ctx); err != nil {
		return "", err
	}
	defer s.controller.ReleaseBackground()

	frame, err := s.serde.Marshal(p)
	if err != nil {
		return "", err
	}

	name = s.nextName()
	w, err := s.store.Create(ctx, name)
	if err != nil {
		return "", fmt.Errorf("spill: create %s: %w", name, err)
	}
	n, err := resource.NewRateLimitedWriter(ctx, w, s.controller).Write(frame)
	written = int64(n)
	if err == nil {
		err = w.Sync()
	}
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.store.Delete(context.WithoutCancel(ctx), name)
		return "", fmt.Errorf("spill: write %s: %w", name, err)
	}

	s.logger.DebugContext(ctx, "spilled page",
		"name", name,
		"positions", p.PositionCount(),
		"channels", p.ChannelCount(),
		"bytes", written,
		"compression", s.serde.Compression().String())
	return name, nil
}

// Restore reads a spilled page. The caller owns the returned page.
func (s *Spiller) Restore(ctx context.Context, name string) (p *page.Page, err error) {
	start := time.Now()
	var size int64
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordRestore(size, time.Since(start), err)
		}
	}()

	if err := s.controller.AcquireBackground(ctx); err != nil {
		return nil, err
	}
	defer s.controller.ReleaseBackground()

	blob, err := s.store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("spill: open %s: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	size = blob.Size()
	rc, err := blob.ReadRange(ctx, 0, size)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("spill: %s: %w: empty blob", name, page.ErrCorrupt)
		}
		return nil, fmt.Errorf("spill: read %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	p, err = s.serde.ReadFrame(resource.NewRateLimitedReader(ctx, rc, s.controller), size)
	if err != nil {
		return nil, fmt.Errorf("spill: decode %s: %w", name, err)
	}

	s.logger.DebugContext(ctx, "restored page", "name", name, "positions", p.PositionCount(), "bytes", size)
	return p, nil
}

// Delete removes a spilled page.
func (s *Spiller) Delete(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, name); err != nil {
		return fmt.Errorf("spill: delete %s: %w", name, err)
	}
	return nil
}

// List returns the names of all pages spilled under this spiller's prefix.
func (s *Spiller) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx, s.prefix)
}

// Cleanup deletes every page spilled under this spiller's prefix.
func (s *Spiller) Cleanup(ctx context.Context) error {
	names, err := s.List(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, name := range names {
		if err := s.Delete(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
