package executor

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/dbcore/pkg/outcome"
)

// failureKind separates the two retry-relevant buckets of driver errors,
// plus caller-initiated aborts.
type failureKind int

const (
	// failureRejected: the store examined the statement and refused it on
	// semantic grounds (constraint violation, bad SQL, missing row).
	// Retrying is futile; the failure propagates on first occurrence.
	failureRejected failureKind = iota

	// failureTransient: infrastructure-level failure (connection reset,
	// timeout, unreachable server). Likely to succeed on retry.
	failureTransient

	// failureAborted: the caller's cancellation signal fired. The retry
	// loop stops immediately regardless of budget.
	failureAborted
)

// verdict is the tagged result of classifying a driver error. It replaces
// exception-subtype dispatch with an explicit value the retry loop consumes.
type verdict struct {
	kind  failureKind
	class outcome.Classification
}

// PostgreSQL error class prefixes (SQLSTATE). Class 08 is connection
// exceptions; 22, 23 and 42 are data, integrity and syntax violations.
const (
	pgClassConnection = "08"
	pgClassData       = "22"
	pgClassIntegrity  = "23"
	pgClassSyntax     = "42"

	pgCodeUniqueViolation    = "23505"
	pgCodeSerializationFail  = "40001"
	pgCodeDeadlockDetected   = "40P01"
	pgCodeQueryCanceled      = "57014"
	pgCodeAdminShutdown      = "57P01"
	pgCodeCrashShutdown      = "57P02"
	pgCodeCannotConnectNow   = "57P03"
	pgCodeTooManyConnections = "53300"
)

// classifyError maps a driver error into a verdict for the retry loop.
//
// Unknown errors land in the rejected bucket: retrying a statement whose
// failure mode we cannot identify risks duplicating its effects.
func classifyError(err error) verdict {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return verdict{kind: failureAborted, class: outcome.GenericError}

	case errors.Is(err, gorm.ErrRecordNotFound):
		return verdict{kind: failureRejected, class: outcome.NotFound}

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return verdict{kind: failureRejected, class: outcome.Duplicate}

	case errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, gorm.ErrInvalidData):
		return verdict{kind: failureRejected, class: outcome.GenericError}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPgError(pgErr)
	}

	if isTransportError(err) {
		return verdict{kind: failureTransient, class: outcome.GenericError}
	}

	return verdict{kind: failureRejected, class: outcome.GenericError}
}

// classifyPgError maps a PostgreSQL SQLSTATE into a verdict.
func classifyPgError(pgErr *pgconn.PgError) verdict {
	switch pgErr.Code {
	case pgCodeUniqueViolation:
		return verdict{kind: failureRejected, class: outcome.Duplicate}
	case pgCodeSerializationFail:
		return verdict{kind: failureRejected, class: outcome.SerializationError}
	case pgCodeDeadlockDetected,
		pgCodeQueryCanceled,
		pgCodeAdminShutdown,
		pgCodeCrashShutdown,
		pgCodeCannotConnectNow,
		pgCodeTooManyConnections:
		return verdict{kind: failureTransient, class: outcome.GenericError}
	}

	switch {
	case strings.HasPrefix(pgErr.Code, pgClassConnection):
		return verdict{kind: failureTransient, class: outcome.GenericError}
	case strings.HasPrefix(pgErr.Code, pgClassIntegrity),
		strings.HasPrefix(pgErr.Code, pgClassData),
		strings.HasPrefix(pgErr.Code, pgClassSyntax):
		return verdict{kind: failureRejected, class: outcome.GenericError}
	}

	return verdict{kind: failureRejected, class: outcome.GenericError}
}

// isTransportError reports whether err is a network/driver-level failure that
// never reached the server's statement validation.
func isTransportError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
