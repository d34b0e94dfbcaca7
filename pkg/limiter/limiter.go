package limiter

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Limiter is a named counting admission gate with a fixed capacity.
// Acquisition blocks cooperatively (the waiting goroutine is parked, no
// busy-waiting) until a unit of capacity is free or the context is done.
//
// The executor owns two independent limiters, one sized for read-only
// statements and one for general/write statements, so read-heavy workloads
// cannot starve writers and vice versa.
type Limiter struct {
	name     string
	capacity int64
	sem      *semaphore.Weighted
	inUse    atomic.Int64
}

// New creates a limiter with the given name and capacity.
// It panics if capacity is not positive; a zero-capacity gate would block
// every caller forever and is always a configuration error.
func New(name string, capacity int64) *Limiter {
	if capacity <= 0 {
		panic(fmt.Sprintf("limiter %q: capacity must be positive, got %d", name, capacity))
	}
	return &Limiter{
		name:     name,
		capacity: capacity,
		sem:      semaphore.NewWeighted(capacity),
	}
}

// Acquire blocks until a unit of capacity is free or ctx is done.
// On success it returns a Slot that must be released exactly once; defer
// slot.Release() immediately after a successful acquire. If ctx fires while
// waiting, the context error is returned and no capacity is held.
//
// Acquire is not reentrant: a caller must not acquire twice on the same
// limiter within one logical operation, or two such callers can deadlock
// each other at full capacity.
func (l *Limiter) Acquire(ctx context.Context) (*Slot, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("limiter %q: acquire: %w", l.name, err)
	}
	l.inUse.Add(1)
	return &Slot{limiter: l}, nil
}

// TryAcquire acquires a slot without blocking.
// The second return value reports whether a slot was obtained.
func (l *Limiter) TryAcquire() (*Slot, bool) {
	if !l.sem.TryAcquire(1) {
		return nil, false
	}
	l.inUse.Add(1)
	return &Slot{limiter: l}, true
}

// Name returns the limiter's name.
func (l *Limiter) Name() string {
	return l.name
}

// Capacity returns the fixed capacity of the limiter.
func (l *Limiter) Capacity() int64 {
	return l.capacity
}

// InUse returns the number of currently-held slots.
func (l *Limiter) InUse() int64 {
	return l.inUse.Load()
}

// Slot represents one held unit of limiter capacity. It is exclusively owned
// by the acquiring call stack until released.
type Slot struct {
	limiter *Limiter
	once    sync.Once
}

// Release returns the unit of capacity to its limiter. It is safe to call
// more than once; only the first call has an effect.
func (s *Slot) Release() {
	s.once.Do(func() {
		s.limiter.inUse.Add(-1)
		s.limiter.sem.Release(1)
	})
}
