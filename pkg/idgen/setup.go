package idgen

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/semaphore"

	"github.com/Aleph-Alpha/dbcore/pkg/executor"
	"github.com/Aleph-Alpha/dbcore/pkg/outcome"
)

// Logger defines the interface for logging operations within the idgen package.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=idgen
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Executor is the slice of the statement executor the generator depends on.
// *executor.Executor satisfies it; tests substitute a fake that counts
// round trips.
type Executor interface {
	ExecuteWithRetry(ctx context.Context, stmt executor.Statement, opts ...executor.RetryOption) outcome.Outcome
}

// Generator hands out globally-unique, process-monotonic 64-bit identifiers.
//
// Implementations: BlockGenerator (durable, backed by the id_counters table)
// and MemoryGenerator (volatile, for tests and non-persistent setups).
type Generator interface {
	// NextID returns a single fresh identifier.
	NextID(ctx context.Context) (uint64, error)

	// IDRange grants a contiguous range of count identifiers and returns
	// the first one. count == 0 is a programmer error and panics.
	IDRange(ctx context.Context, count uint64) (uint64, error)
}

// BlockGenerator serves identifiers from an in-memory window replenished in
// fixed-size blocks against a persisted counter.
//
// The window invariant is lastUsed <= endID: everything at or below lastUsed
// has been handed out in this process, everything in (lastUsed, endID] is
// durably reserved and free to grant without touching the store. After a
// process restart a fresh block starts strictly above the last durable
// value, so no identifier ever recurs; whatever was left of the previous
// window is discarded. That bounded waste is the price of not paying a store
// round trip per identifier.
type BlockGenerator struct {
	cfg    Config
	exec   Executor
	logger Logger

	// mu guards the window. The critical sections are pure arithmetic;
	// no I/O happens while it is held.
	mu       sync.Mutex
	lastUsed uint64
	endID    uint64

	// replenish serializes slow-path store round trips so a burst of
	// callers on an exhausted window produces one reservation, not one
	// per caller.
	replenish *semaphore.Weighted

	reservationsTotal prometheus.Counter
}

// NewGenerator creates a durable generator over the given executor.
// It probes the configured counter row and returns ErrCounterMissing when
// the migrator has not been run to completion, so a misconfigured process
// fails at startup instead of on first allocation.
func NewGenerator(cfg Config, exec Executor, logger Logger, opts ...Option) (*BlockGenerator, error) {
	if exec == nil {
		panic("idgen: nil executor")
	}
	if logger == nil {
		panic("idgen: nil logger")
	}
	cfg = cfg.withDefaults()

	probe := &counterProbeStatement{counter: cfg.CounterName}
	out := exec.ExecuteWithRetry(context.Background(), probe, executor.WithMaxRetries(cfg.MaxRetries))
	if !out.OK() {
		return nil, fmt.Errorf("probing id counter %q: %s", cfg.CounterName, out)
	}
	if !probe.found {
		return nil, fmt.Errorf("probing id counter %q: %w", cfg.CounterName, ErrCounterMissing)
	}

	g := &BlockGenerator{
		cfg:       cfg,
		exec:      exec,
		logger:    logger,
		replenish: semaphore.NewWeighted(1),
		reservationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dbcore_id_block_reservations_total",
			Help: "Durable counter increments issued by the ID generator.",
		}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Option customizes the generator at construction time.
type Option func(*BlockGenerator)

// WithRegisterer registers the generator's Prometheus collectors on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(g *BlockGenerator) {
		reg.MustRegister(g.reservationsTotal)
	}
}

// NextID returns a single fresh identifier.
func (g *BlockGenerator) NextID(ctx context.Context) (uint64, error) {
	return g.IDRange(ctx, 1)
}

// IDRange grants a contiguous range of count identifiers and returns the
// first. The fast path is pure in-memory arithmetic; only an exhausted
// window costs a store round trip, and concurrent exhausted callers share a
// single one.
func (g *BlockGenerator) IDRange(ctx context.Context, count uint64) (uint64, error) {
	if count == 0 {
		panic("idgen: count must be positive")
	}

	if first, ok := g.takeFromWindow(count); ok {
		return first, nil
	}

	if err := g.replenish.Acquire(ctx, 1); err != nil {
		return 0, fmt.Errorf("waiting for id window replenishment: %w", err)
	}
	defer g.replenish.Release(1)

	// Another caller may have replenished the window while this one was
	// waiting for the replenish mutex. Without this second check every
	// contended replenishment would burn an extra reserved block.
	if first, ok := g.takeFromWindow(count); ok {
		return first, nil
	}

	block := blockFor(count, g.cfg.BlockSize)
	stmt := &reserveBlockStatement{counter: g.cfg.CounterName, block: block}
	out := g.exec.ExecuteWithRetry(ctx, stmt, executor.WithMaxRetries(g.cfg.MaxRetries))
	if !out.OK() {
		g.logger.Error("id block reservation failed", nil, map[string]interface{}{
			"counter": g.cfg.CounterName,
			"block":   block,
			"outcome": out.String(),
		})
		return 0, fmt.Errorf("%w: %s", ErrReservationFailed, out)
	}
	g.reservationsTotal.Inc()
	g.logger.Debug("reserved id block", nil, map[string]interface{}{
		"counter": g.cfg.CounterName,
		"block":   block,
		"new_end": stmt.newEnd,
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	g.endID = stmt.newEnd
	g.lastUsed = stmt.newEnd - block
	first := g.lastUsed + 1
	g.lastUsed += count
	return first, nil
}

// takeFromWindow attempts the fast path: grant count identifiers from the
// already-reserved window without any I/O.
func (g *BlockGenerator) takeFromWindow(count uint64) (uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastUsed+count <= g.endID {
		first := g.lastUsed + 1
		g.lastUsed += count
		return first, true
	}
	return 0, false
}

// blockFor returns the smallest multiple of blockSize that covers count.
func blockFor(count, blockSize uint64) uint64 {
	blocks := (count + blockSize - 1) / blockSize
	return blocks * blockSize
}
