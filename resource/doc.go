// Package resource implements the Controller for global limits and governance.
//
// The Controller provides centralized management of three resource types:
//
//   - Memory: Track and limit off-heap memory (non-blocking, fail-fast)
//   - Concurrency: Limit background workers (page compaction, spilling)
//   - IO: Rate-limit spill IO to avoid starving foreground queries
//
// # Memory Management
//
// Every off-heap allocation reserves its physical size before mapping and
// returns it when the last reference is released. AcquireMemory is
// non-blocking and returns ErrMemoryLimitExceeded if the limit would be
// exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(1024*1024); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides retry/backoff
//	}
//	defer rc.ReleaseMemory(1024*1024)
//
// # IO Rate Limiting
//
// Token bucket rate limiter for spill IO:
//
//	writer := resource.NewRateLimitedWriter(ctx, file, rc)
//	reader := resource.NewRateLimitedReader(ctx, file, rc)
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
