// handler.go bridges eventsink error routing to a Reporter.

package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"time"

	"github.com/strongdm/ai-eventsink/pkg/eventsink"
)

// HandlerOption configures the error handler returned by NewErrorHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	source    string
	severity  Severity
	contextID *uint64
	metadata  map[string]string
	logger    *log.Logger
	started   *time.Time
}

// WithSource sets Failure.Source, usually the name of the event.
func WithSource(source string) HandlerOption {
	return func(c *handlerConfig) {
		c.source = source
	}
}

// WithSeverity sets the severity of non-panic failures (default: error).
// Panics are always reported as SeverityCrash.
func WithSeverity(severity Severity) HandlerOption {
	return func(c *handlerConfig) {
		c.severity = severity
	}
}

// WithContextID links every failure to a cxdb context.
func WithContextID(id uint64) HandlerOption {
	return func(c *handlerConfig) {
		c.contextID = &id
	}
}

// WithMetadata attaches key-value pairs to every failure.
func WithMetadata(metadata map[string]string) HandlerOption {
	return func(c *handlerConfig) {
		c.metadata = maps.Clone(metadata)
	}
}

// WithSystemState adds goroutine count, heap size, uptime since started and
// hostname to the metadata of crash failures.
func WithSystemState(started time.Time) HandlerOption {
	return func(c *handlerConfig) {
		c.started = &started
	}
}

// WithLogger sets the logger used when recording fails.
func WithLogger(logger *log.Logger) HandlerOption {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// NewErrorHandler returns an error handler that records each routed error
// to reporter. Register it with eventsink.Sink.AddErrorHandler.
func NewErrorHandler(reporter Reporter, opts ...HandlerOption) *eventsink.ErrorHandlerFunc {
	cfg := &handlerConfig{severity: SeverityError}
	for _, opt := range opts {
		opt(cfg)
	}

	return eventsink.NewErrorHandler(func(err error) {
		failure := NewFailure(err, cfg.severity)
		failure.Source = cfg.source
		if cfg.contextID != nil {
			id := *cfg.contextID
			failure.ContextID = &id
		}
		if len(cfg.metadata) > 0 {
			failure.Metadata = maps.Clone(cfg.metadata)
		}
		if cfg.started != nil && failure.Kind == KindPanic {
			if failure.Metadata == nil {
				failure.Metadata = make(map[string]string)
			}
			maps.Copy(failure.Metadata, systemState(*cfg.started))
		}

		if recordErr := reporter.Record(context.Background(), failure); recordErr != nil && cfg.logger != nil {
			cfg.logger.Printf("eventsink: failed to record failure: %v", recordErr)
		}
	})
}

// NewFailure classifies err. A *eventsink.PanicError becomes a crash with
// its stack trace; anything else keeps the given severity.
func NewFailure(err error, severity Severity) Failure {
	var pe *eventsink.PanicError
	if errors.As(err, &pe) {
		return Failure{
			Severity:   SeverityCrash,
			Kind:       KindPanic,
			ErrorType:  fmt.Sprintf("%T", pe.Value),
			Message:    pe.Error(),
			StackTrace: pe.Stack,
		}
	}

	f := Failure{
		Severity: severity,
		Kind:     KindError,
	}
	if err == nil {
		f.ErrorType = "<nil>"
		f.Message = "<nil>"
		return f
	}
	f.ErrorType = fmt.Sprintf("%T", err)
	f.Message = err.Error()
	return f
}
