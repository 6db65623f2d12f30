package offheap

import "sync"

// Releaser is anything holding off-heap references.
type Releaser interface {
	Release()
}

// Scope owns a set of releasers and releases each of them exactly once, in
// reverse order of registration, when closed.
//
// Scope is safe for concurrent use.
type Scope struct {
	mu     sync.Mutex
	items  []Releaser
	closed bool
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{}
}

// Add registers r with the scope. If the scope is already closed, r is
// released immediately.
func (s *Scope) Add(r Releaser) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		r.Release()
		return
	}
	s.items = append(s.items, r)
	s.mu.Unlock()
}

// Len returns the number of releasers still owned by the scope.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Close releases all registered releasers. It is idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	items := s.items
	s.items = nil
	s.mu.Unlock()

	for i := len(items) - 1; i >= 0; i-- {
		items[i].Release()
	}
}

// Disarm closes the scope without releasing anything, handing ownership of
// every registered releaser back to the caller. Use it once a multi-step
// construction has succeeded.
func (s *Scope) Disarm() {
	s.mu.Lock()
	s.closed = true
	s.items = nil
	s.mu.Unlock()
}

// Track registers r with s and returns it, so a freshly created value can be
// handed to the scope inline.
//
//	region, err := blk.GetRegion(0, 10)
//	if err != nil { ... }
//	offheap.Track(scope, region)
func Track[R Releaser](s *Scope, r R) R {
	s.Add(r)
	return r
}
