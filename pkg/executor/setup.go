package executor

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/dbcore/pkg/limiter"
	"github.com/Aleph-Alpha/dbcore/pkg/outcome"
)

// Logger defines the interface for logging operations within the executor package.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=executor
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Database hands out the active GORM client. *postgres.Postgres satisfies it;
// tests substitute a stub.
type Database interface {
	DB() *gorm.DB
}

// tracerName identifies this package's spans in exported traces.
const tracerName = "github.com/Aleph-Alpha/dbcore/pkg/executor"

// Executor runs statements against the database with bounded concurrency,
// transient-failure retries, and transaction support.
//
// It owns two admission gates: one for read statements and one for
// write/general statements, so a read-heavy workload cannot starve writers
// and vice versa. The gates throttle logical operations only; physical
// connection pooling stays with the driver.
//
// An Executor is safe for concurrent use. Its limiters live for the process
// lifetime; construct one per backing database at startup and inject it into
// callers.
type Executor struct {
	cfg     Config
	db      Database
	logger  Logger
	reads   *limiter.Limiter
	writes  *limiter.Limiter
	metrics *executorMetrics
}

// Option customizes the executor at construction time.
type Option func(*Executor)

// WithRegisterer registers the executor's Prometheus collectors (statement
// counters, duration histogram, limiter gauges) on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Executor) {
		e.metrics.register(reg)
	}
}

// NewExecutor creates a resilient statement executor over db.
// It panics if db or logger is nil; both are required collaborators and a
// nil one is always a wiring error.
func NewExecutor(cfg Config, db Database, logger Logger, opts ...Option) *Executor {
	if db == nil {
		panic("executor: nil database")
	}
	if logger == nil {
		panic("executor: nil logger")
	}

	cfg = cfg.withDefaults()

	e := &Executor{
		cfg:    cfg,
		db:     db,
		logger: logger,
		reads:  limiter.New("read", cfg.ReadPoolSize),
		writes: limiter.New("write", cfg.WritePoolSize),
	}
	e.metrics = newExecutorMetrics(e.reads, e.writes)

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// limiterFor selects the admission gate matching the statement kind.
func (e *Executor) limiterFor(kind Kind) *limiter.Limiter {
	if kind == KindRead {
		return e.reads
	}
	return e.writes
}

// ExecuteOnce acquires the appropriate limiter slot, runs the statement on a
// fresh session, and releases the slot on every exit path. Driver failures
// are not retried here; they come back as a classified failure Outcome.
// Retry is a separate concern layered on top (ExecuteWithRetry).
//
// A nil statement is a programmer error and panics.
func (e *Executor) ExecuteOnce(ctx context.Context, stmt Statement) outcome.Outcome {
	out, err := e.executeOnce(ctx, stmt)
	if err != nil {
		v := classifyError(err)
		e.logger.Error("statement failed", err, map[string]interface{}{
			"kind":           stmt.Kind().String(),
			"classification": v.class.String(),
		})
		e.metrics.failuresTotal.WithLabelValues(v.class.String()).Inc()
		return outcome.Failure(v.class, err.Error())
	}
	return out
}

// executeOnce is the single-attempt primitive shared by ExecuteOnce and the
// retry loop. The returned error is the raw driver error, still classifiable.
func (e *Executor) executeOnce(ctx context.Context, stmt Statement) (outcome.Outcome, error) {
	if stmt == nil {
		panic("executor: nil statement")
	}

	slot, err := e.limiterFor(stmt.Kind()).Acquire(ctx)
	if err != nil {
		return outcome.Outcome{}, err
	}
	defer slot.Release()

	return e.runStatement(ctx, stmt, e.db.DB())
}

// runStatement executes stmt against the given session, recording a span and
// the duration/attempt metrics. db may be a plain session or an open
// transaction.
func (e *Executor) runStatement(ctx context.Context, stmt Statement, db *gorm.DB) (outcome.Outcome, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "executor.statement")
	span.SetAttributes(attribute.String("db.statement.kind", stmt.Kind().String()))
	defer span.End()

	start := time.Now()
	out, err := stmt.Run(ctx, db)
	e.metrics.attemptsTotal.WithLabelValues(stmt.Kind().String()).Inc()
	e.metrics.statementDuration.WithLabelValues(stmt.Kind().String()).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}
	if !out.OK() {
		span.SetStatus(codes.Error, out.Message)
	}
	return out, nil
}
