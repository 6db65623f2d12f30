package memdb

import (
	"errors"
	"fmt"

	"github.com/hupe1980/memdb/block"
	"github.com/hupe1980/memdb/offheap"
	"github.com/hupe1980/memdb/resource"
	"github.com/hupe1980/memdb/spill"
)

var (
	// ErrClosed is returned when the runtime is used after Close.
	ErrClosed = errors.New("memdb: runtime is closed")
	// ErrSpillDisabled is returned by spill operations when no spill store is configured.
	ErrSpillDisabled = errors.New("memdb: no spill store configured")

	// ErrMemoryLimitExceeded is returned when an allocation would exceed the memory limit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
	// ErrNotFound is returned when a spilled page does not exist.
	ErrNotFound = spill.ErrNotFound
	// ErrLeaked is returned by Close when off-heap buffers are still referenced.
	ErrLeaked = offheap.ErrLeaked

	ErrInvalidPosition  = block.ErrInvalidPosition
	ErrInvalidRegion    = block.ErrInvalidRegion
	ErrCapacityExceeded = block.ErrCapacityExceeded
)

// MemoryLimitError reports an allocation rejected by the memory limit.
//
// The original underlying error can be accessed via errors.Unwrap, and
// errors.Is(err, ErrMemoryLimitExceeded) holds.
type MemoryLimitError struct {
	Limit int64
	Usage int64
	cause error
}

func (e *MemoryLimitError) Error() string {
	return fmt.Sprintf("memory limit exceeded: %d of %d bytes in use", e.Usage, e.Limit)
}

func (e *MemoryLimitError) Unwrap() error { return e.cause }

func (r *Runtime) translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return &MemoryLimitError{
			Limit: r.controller.MemoryLimit(),
			Usage: r.controller.MemoryUsage(),
			cause: err,
		}
	}
	if errors.Is(err, offheap.ErrAllocatorClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}
