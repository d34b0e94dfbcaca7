package idgen

import "errors"

var (
	// ErrCounterMissing indicates the configured id_counters row does not
	// exist. The schema migrator (postgres.Migrate + SeedCounter) must run
	// to completion before the generator is constructed.
	ErrCounterMissing = errors.New("id counter row missing, run migrations and seed the counter first")

	// ErrReservationFailed indicates a block reservation did not succeed
	// even after the executor's retry budget. ID allocation never silently
	// degrades; callers must treat this as fatal for the requesting
	// operation.
	ErrReservationFailed = errors.New("id block reservation failed")
)
