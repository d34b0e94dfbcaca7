package idgen

import (
	"context"
	"sync"
)

// MemoryGenerator is the in-memory-only Generator variant: same contract as
// BlockGenerator but with a conceptually infinite window, so every request
// takes the fast path and no store round trip is ever issued. Identifiers
// are unique and monotonic within the process only.
type MemoryGenerator struct {
	mu       sync.Mutex
	lastUsed uint64
}

// NewMemoryGenerator creates a volatile generator starting at 1.
func NewMemoryGenerator() *MemoryGenerator {
	return &MemoryGenerator{}
}

// NextID returns a single fresh identifier.
func (g *MemoryGenerator) NextID(ctx context.Context) (uint64, error) {
	return g.IDRange(ctx, 1)
}

// IDRange grants a contiguous range of count identifiers and returns the
// first. count == 0 panics, matching the durable generator.
func (g *MemoryGenerator) IDRange(ctx context.Context, count uint64) (uint64, error) {
	if count == 0 {
		panic("idgen: count must be positive")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	first := g.lastUsed + 1
	g.lastUsed += count
	return first, nil
}
