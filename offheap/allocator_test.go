package offheap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memdb/internal/mem"
	"github.com/hupe1980/memdb/resource"
)

type recordingMetrics struct {
	allocated int64
	released  int64
	failures  int
}

func (m *recordingMetrics) RecordAllocate(bytes int64, err error) {
	if err != nil {
		m.failures++
		return
	}
	m.allocated += bytes
}

func (m *recordingMetrics) RecordRelease(bytes int64) {
	m.released += bytes
}

func TestAllocator_MemoryBudget(t *testing.T) {
	ps := mem.PageSize()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: int64(2 * ps)})
	metrics := &recordingMetrics{}
	a := NewAllocator(WithMemoryAcquirer(rc), WithMetrics(metrics))

	b1, err := a.Allocate(ps)
	require.NoError(t, err)
	b2, err := a.Allocate(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2*ps), rc.MemoryUsage())

	_, err = a.Allocate(1)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, uint64(1), a.Stats().FailedAllocs)
	assert.Equal(t, 1, metrics.failures)

	b1.Release()
	assert.Equal(t, int64(ps), rc.MemoryUsage())

	b3, err := a.Allocate(10)
	require.NoError(t, err)

	b2.Release()
	b3.Release()
	assert.Zero(t, rc.MemoryUsage())
	assert.Equal(t, metrics.allocated, metrics.released)
	assert.Equal(t, int64(3*ps), metrics.allocated)
}

func TestAllocator_CloseReportsLeaks(t *testing.T) {
	a := NewAllocator()
	b, err := a.Allocate(100)
	require.NoError(t, err)

	err = a.Close()
	assert.ErrorIs(t, err, ErrLeaked)

	_, err = a.Allocate(1)
	assert.ErrorIs(t, err, ErrAllocatorClosed)

	// The leaked buffer is still usable and can still be released.
	Store[int32](b, 0, 1)
	b.Release()
	assert.Zero(t, a.Stats().LiveBuffers)
	assert.NoError(t, a.Close())
}

func TestAllocator_CloseClean(t *testing.T) {
	a := NewAllocator()
	b, err := a.Allocate(100)
	require.NoError(t, err)
	b.Release()

	assert.NoError(t, a.Close())
	assert.Contains(t, a.String(), "live: 0")
}

func TestAllocator_Nil(t *testing.T) {
	var a *Allocator
	b, err := a.Allocate(32)
	require.NoError(t, err)
	Store[int64](b, 24, 1)
	b.Release()

	assert.Equal(t, Stats{}, a.Stats())
	assert.NoError(t, a.Close())
}

type failingAcquirer struct{}

func (failingAcquirer) AcquireMemory(int64) error { return errors.New("no memory") }
func (failingAcquirer) ReleaseMemory(int64)       {}

func TestAllocator_AcquirerError(t *testing.T) {
	a := NewAllocator(WithMemoryAcquirer(failingAcquirer{}))

	_, err := a.Allocate(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no memory")

	// Zero-byte buffers need no reservation.
	b, err := a.Allocate(0)
	require.NoError(t, err)
	b.Release()
}

func BenchmarkAllocateRelease(b *testing.B) {
	a := NewAllocator()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf, err := a.Allocate(4096)
		if err != nil {
			b.Fatal(err)
		}
		buf.Release()
	}
}
