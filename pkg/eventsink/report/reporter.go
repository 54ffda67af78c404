// reporter.go provides the Reporter interface and its default implementation.

package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Reporter records failures to a configured sink.
type Reporter interface {
	// Record completes the failure's identity fields and writes it to the
	// sink. Blocks until the sink returns.
	Record(ctx context.Context, failure Failure) error

	// Flush ensures any buffered failures are persisted.
	Flush(ctx context.Context) error

	// Close releases resources held by the reporter.
	Close() error
}

// ReporterOption configures a Reporter.
type ReporterOption func(*reporterConfig)

type reporterConfig struct {
	sink     Sink
	clock    func() time.Time
	redactor *redactor
}

// WithSink sets the sink failures are written to.
func WithSink(sink Sink) ReporterOption {
	return func(c *reporterConfig) {
		c.sink = sink
	}
}

// WithRedaction removes secrets and personal data from Message, StackTrace
// and Metadata, and caps their size, before failures reach the sink.
func WithRedaction(limits RedactionLimits) ReporterOption {
	return func(c *reporterConfig) {
		c.redactor = &redactor{limits: limits}
	}
}

// WithDefaultRedaction enables redaction with DefaultRedactionLimits.
func WithDefaultRedaction() ReporterOption {
	return WithRedaction(DefaultRedactionLimits())
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) ReporterOption {
	return func(c *reporterConfig) {
		if now != nil {
			c.clock = now
		}
	}
}

type defaultReporter struct {
	sink     Sink
	clock    func() time.Time
	redactor *redactor
}

// NewReporter creates a Reporter. Without WithSink, failures are discarded.
func NewReporter(opts ...ReporterOption) Reporter {
	cfg := &reporterConfig{clock: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.sink == nil {
		cfg.sink = discardSink{}
	}
	return &defaultReporter{
		sink:     cfg.sink,
		clock:    cfg.clock,
		redactor: cfg.redactor,
	}
}

// Record fills in ID and Timestamp, redacts if configured, computes the
// Fingerprint and writes to the sink.
func (r *defaultReporter) Record(ctx context.Context, failure Failure) error {
	if failure.ID == "" {
		failure.ID = uuid.NewString()
	}
	if failure.Timestamp.IsZero() {
		failure.Timestamp = r.clock()
	}
	if r.redactor != nil {
		failure = r.redactor.apply(failure)
	}
	failure.Fingerprint = Fingerprint(failure)
	return r.sink.Write(ctx, failure)
}

func (r *defaultReporter) Flush(ctx context.Context) error {
	return r.sink.Flush(ctx)
}

func (r *defaultReporter) Close() error {
	return r.sink.Close()
}

// discardSink stands in for sinks/noop, which imports this package.
type discardSink struct{}

func (discardSink) Write(ctx context.Context, failure Failure) error { return nil }
func (discardSink) Flush(ctx context.Context) error                  { return nil }
func (discardSink) Close() error                                     { return nil }
