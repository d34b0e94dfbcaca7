// Package executor runs database statements with bounded concurrency,
// transient-failure retries, and explicit transaction lifetime management.
//
// # Execution model
//
// A Statement is an opaque unit of work that runs once against an open
// session. The executor wraps every execution with:
//
//   - admission control: two counting gates (read pool, write pool) bound
//     the number of concurrent logical operations per kind
//   - failure classification: driver errors are mapped to an explicit
//     verdict (store-rejected vs transport/transient vs aborted) by
//     classifyError rather than by error-type dispatch in callers
//   - retry: ExecuteWithRetry re-attempts transient failures with a fixed
//     delay; store-rejected failures propagate on first occurrence
//
// # Retry semantics
//
// MaxRetries == 0 means an effectively unlimited budget, not zero attempts.
// See Config.MaxRetries before changing any call site.
//
// # Transactions
//
//	handle, err := exec.BeginTransaction(ctx)
//	if err != nil { ... }
//	defer handle.Close()
//
//	out := exec.ExecuteWithRetry(ctx, stmt, executor.InTransaction(handle))
//	if out.OK() {
//		err = handle.Commit()
//	}
//
// The handle owns one connection, one transaction, and one write-pool slot
// for their combined lifetime. Commit and Rollback finish the transaction
// but the slot is released only by Close, which also rolls back a
// still-open transaction. Statements executed under a handle never acquire
// their own slot.
//
// # Failure semantics
//
// The executor never swallows an error: every failure is either returned as
// a classified Outcome (including exhausted retries, as TooManyRetries) or,
// for programmer errors such as a nil statement, raised as a panic. Each
// transport failure is logged before the retry; the final failure is logged
// before it is returned.
package executor
