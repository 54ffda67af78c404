// sink.go defines the Sink interface for failure destinations.

package report

import (
	"context"
	"errors"
)

// ErrClosed is returned by sinks that no longer accept writes.
var ErrClosed = errors.New("report sink is closed")

// Sink is the destination for failures.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Write persists a failure.
	Write(ctx context.Context, failure Failure) error

	// Flush ensures any buffered failures are persisted.
	Flush(ctx context.Context) error

	// Close releases resources held by the sink.
	Close() error
}
