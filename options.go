package memdb

import (
	"log/slog"

	"github.com/hupe1980/memdb/blobstore"
	"github.com/hupe1980/memdb/page"
	"github.com/hupe1980/memdb/resource"
)

type options struct {
	resources        resource.Config
	compression      page.Compression
	spillStore       blobstore.BlobStore
	spillPrefix      string
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Runtime constructor behavior.
type Option func(*options)

// WithMemoryLimit caps the off-heap bytes the runtime may have mapped at
// once. Allocations beyond the limit fail with ErrMemoryLimitExceeded.
// A limit of 0 tracks usage without enforcing a cap.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.resources.MemoryLimitBytes = bytes
	}
}

// WithMaxBackgroundWorkers bounds the number of concurrent background jobs
// (channel compaction, spilling). Defaults to 1.
func WithMaxBackgroundWorkers(n int64) Option {
	return func(o *options) {
		o.resources.MaxBackgroundWorkers = n
	}
}

// WithIOLimit throttles spill traffic to bytesPerSec. 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.resources.IOLimitBytesPerSec = bytesPerSec
	}
}

// WithCompression sets the compression used for spilled page frames.
func WithCompression(c page.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithSpillStore enables spilling pages to store.
//
// Example with a local directory:
//
//	store := blobstore.NewLocalStore("/var/tmp/memdb")
//	rt, _ := memdb.New(memdb.WithSpillStore(store))
func WithSpillStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.spillStore = store
	}
}

// WithSpillPrefix sets the blob name prefix for spilled pages.
// By default each runtime spills under its own unique prefix.
func WithSpillPrefix(prefix string) Option {
	return func(o *options) {
		o.spillPrefix = prefix
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &memdb.BasicMetricsCollector{}
//	rt, _ := memdb.New(memdb.WithMetricsCollector(metrics))
//	// ... use rt ...
//	stats := metrics.GetStats()
//	fmt.Printf("Allocs: %d, bytes: %d\n", stats.AllocCount, stats.AllocBytes)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		compression:      page.CompressionLZ4,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
