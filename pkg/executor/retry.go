package executor

import (
	"context"
	"math"
	"time"

	"github.com/Aleph-Alpha/dbcore/pkg/outcome"
)

// retryOptions collects the per-call knobs of ExecuteWithRetry.
type retryOptions struct {
	maxRetries int
	handle     *TransactionHandle
}

// RetryOption customizes a single ExecuteWithRetry call.
type RetryOption func(*retryOptions)

// WithMaxRetries overrides the executor's configured retry budget for one
// call. As with the config field, 0 means an effectively unlimited budget.
func WithMaxRetries(n int) RetryOption {
	return func(o *retryOptions) {
		o.maxRetries = n
	}
}

// InTransaction runs every attempt on the handle's open transaction instead
// of a fresh session. No limiter slot is acquired: the handle already holds
// one, and all statements of a transaction run serially on its single
// connection anyway.
func InTransaction(h *TransactionHandle) RetryOption {
	return func(o *retryOptions) {
		o.handle = h
	}
}

// effectiveMaxRetries resolves the configured budget, mapping 0 to an
// effectively unbounded attempt count.
func effectiveMaxRetries(configured int) int {
	if configured <= 0 {
		return math.MaxInt
	}
	return configured
}

// ExecuteWithRetry runs the statement, retrying transient failures up to the
// effective retry budget with the configured delay between attempts.
//
// Failure handling per attempt:
//   - store-rejected failures (constraint violations, bad SQL) propagate
//     immediately as a classified Outcome; retrying them is futile
//   - transport failures are logged and retried after RetryDelay
//   - cancellation of ctx aborts the loop immediately regardless of bucket
//
// When the budget is exhausted the returned Outcome is classified
// TooManyRetries and the final failure is logged. A nil statement panics.
func (e *Executor) ExecuteWithRetry(ctx context.Context, stmt Statement, opts ...RetryOption) outcome.Outcome {
	if stmt == nil {
		panic("executor: nil statement")
	}

	options := retryOptions{maxRetries: e.cfg.MaxRetries}
	for _, opt := range opts {
		opt(&options)
	}
	maxAttempts := effectiveMaxRetries(options.maxRetries)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var out outcome.Outcome
		var err error
		if options.handle != nil {
			out, err = options.handle.run(ctx, e, stmt)
		} else {
			out, err = e.executeOnce(ctx, stmt)
		}
		if err == nil {
			return out
		}

		v := classifyError(err)
		switch v.kind {
		case failureAborted:
			return outcome.Failuref(outcome.GenericError, "execution aborted: %v", err)

		case failureRejected:
			e.logger.Error("statement rejected by store", err, map[string]interface{}{
				"kind":           stmt.Kind().String(),
				"classification": v.class.String(),
				"attempt":        attempt,
			})
			e.metrics.failuresTotal.WithLabelValues(v.class.String()).Inc()
			return outcome.Failure(v.class, err.Error())

		case failureTransient:
			lastErr = err
			e.logger.Warn("transient database failure, retrying", err, map[string]interface{}{
				"kind":    stmt.Kind().String(),
				"attempt": attempt,
				"delay":   e.cfg.RetryDelay.String(),
			})
			e.metrics.retriesTotal.WithLabelValues(stmt.Kind().String()).Inc()

			select {
			case <-ctx.Done():
				return outcome.Failuref(outcome.GenericError, "execution aborted during backoff: %v", ctx.Err())
			case <-time.After(e.cfg.RetryDelay):
			}
		}
	}

	e.logger.Error("retry budget exhausted", lastErr, map[string]interface{}{
		"kind":     stmt.Kind().String(),
		"attempts": maxAttempts,
	})
	e.metrics.failuresTotal.WithLabelValues(outcome.TooManyRetries.String()).Inc()
	return outcome.Failuref(outcome.TooManyRetries, "no attempt succeeded after %d tries: %v", maxAttempts, lastErr)
}
