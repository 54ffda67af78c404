// failure.go defines the Failure record written to report sinks.

package report

import "time"

// Severity indicates how serious a failure is.
type Severity string

const (
	// SeverityWarning indicates a failure that was expected or tolerable.
	SeverityWarning Severity = "warning"

	// SeverityError indicates a listener returned or completed with an error.
	SeverityError Severity = "error"

	// SeverityCrash indicates a listener panicked.
	SeverityCrash Severity = "crash"
)

// Kind distinguishes how a listener failed.
type Kind string

const (
	// KindError is a returned or rejected error.
	KindError Kind = "error"

	// KindPanic is a recovered panic.
	KindPanic Kind = "panic"
)

// Failure is one recorded listener failure.
type Failure struct {
	// ID is a unique identifier (UUID), assigned by the Reporter when empty.
	ID string

	// Timestamp is when the failure was recorded.
	Timestamp time.Time

	// Fingerprint groups failures with the same origin.
	Fingerprint string

	Severity Severity
	Kind     Kind

	// ErrorType is the Go type of the error, or of the panic value.
	ErrorType string

	// Message is the error text.
	Message string

	// StackTrace is set for panics.
	StackTrace string

	// Source names the sink or component the listener was registered on.
	Source string

	// ContextID optionally links the failure to a cxdb context.
	// Uses pointer to distinguish "not set" from "zero value".
	ContextID *uint64

	// Metadata holds caller-supplied key-value pairs.
	Metadata map[string]string
}
