package outcome

import "fmt"

// Classification identifies how a database operation concluded.
// None means success; every other value describes a failure in a way
// that lets the caller decide whether retrying at a higher level makes sense.
type Classification int

const (
	// None indicates the operation succeeded.
	None Classification = iota

	// GenericError is an unclassified failure; the message carries the detail.
	GenericError

	// NotFound indicates the query matched no rows.
	NotFound

	// TooManyRetries indicates the transient-failure retry budget was exhausted.
	TooManyRetries

	// Duplicate indicates the store detected a uniqueness violation.
	Duplicate

	// ValidationError is reserved for statement-specific input validation failures.
	ValidationError

	// ConcurrencyConflict is reserved for statement-specific optimistic-locking failures.
	ConcurrencyConflict

	// SerializationError indicates the store aborted the operation to preserve
	// serializable isolation.
	SerializationError

	// ParsingError is reserved for statement-specific result parsing failures.
	ParsingError
)

// String returns the human-readable name of the classification.
func (c Classification) String() string {
	switch c {
	case None:
		return "none"
	case GenericError:
		return "generic_error"
	case NotFound:
		return "not_found"
	case TooManyRetries:
		return "too_many_retries"
	case Duplicate:
		return "duplicate"
	case ValidationError:
		return "validation_error"
	case ConcurrencyConflict:
		return "concurrency_conflict"
	case SerializationError:
		return "serialization_error"
	case ParsingError:
		return "parsing_error"
	default:
		return fmt.Sprintf("classification(%d)", int(c))
	}
}

// Outcome is the tagged result of a database operation. It is a plain value:
// construct it with Success or Failure and treat it as immutable afterwards.
//
// AffectedRows is only meaningful when Classification is None.
type Outcome struct {
	Classification Classification
	Message        string
	AffectedRows   int64
}

// Success returns a successful outcome reporting the number of affected rows.
func Success(affectedRows int64) Outcome {
	return Outcome{Classification: None, AffectedRows: affectedRows}
}

// Failure returns a failed outcome with the given classification and message.
// Calling Failure with None is a programmer error.
func Failure(class Classification, message string) Outcome {
	if class == None {
		panic("outcome: Failure called with classification None")
	}
	return Outcome{Classification: class, Message: message}
}

// Failuref is Failure with fmt.Sprintf formatting for the message.
func Failuref(class Classification, format string, args ...interface{}) Outcome {
	return Failure(class, fmt.Sprintf(format, args...))
}

// OK reports whether the operation succeeded.
func (o Outcome) OK() bool {
	return o.Classification == None
}

// Is reports whether the outcome carries the given classification.
func (o Outcome) Is(class Classification) bool {
	return o.Classification == class
}

// String renders the outcome for logs and error messages.
func (o Outcome) String() string {
	if o.OK() {
		return fmt.Sprintf("ok (%d rows)", o.AffectedRows)
	}
	return fmt.Sprintf("%s: %s", o.Classification, o.Message)
}
