// Package stderr provides a sink that prints failures in human-readable form.
// Useful for development and debugging.
package stderr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/strongdm/ai-eventsink/pkg/eventsink/report"
)

// StderrSinkOption configures the stderr sink.
type StderrSinkOption func(*stderrSinkConfig)

type stderrSinkConfig struct {
	verbose bool
	out     io.Writer
}

// WithVerbose includes stack traces in the output.
func WithVerbose() StderrSinkOption {
	return func(c *stderrSinkConfig) {
		c.verbose = true
	}
}

// WithWriter sends output to w instead of os.Stderr.
func WithWriter(w io.Writer) StderrSinkOption {
	return func(c *stderrSinkConfig) {
		if w != nil {
			c.out = w
		}
	}
}

type stderrSink struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// NewStderrSink creates a sink that writes to stderr.
func NewStderrSink(opts ...StderrSinkOption) report.Sink {
	cfg := &stderrSinkConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &stderrSink{verbose: cfg.verbose, out: cfg.out}
}

func (s *stderrSink) writer() io.Writer {
	if s.out != nil {
		return s.out
	}
	// Resolved per write so a replaced os.Stderr is honoured.
	return os.Stderr
}

// Write prints one failure as a header line followed by indented details.
//
// Format: [EVENTSINK] <timestamp> <SEVERITY> <kind> <error_type> (source: <source>)
func (s *stderrSink) Write(ctx context.Context, failure report.Failure) error {
	var b strings.Builder

	header := []string{
		"[EVENTSINK]",
		failure.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		strings.ToUpper(string(failure.Severity)),
		string(failure.Kind),
	}
	if failure.ErrorType != "" {
		header = append(header, failure.ErrorType)
	}
	if failure.Source != "" {
		header = append(header, fmt.Sprintf("(source: %s)", failure.Source))
	}
	b.WriteString(strings.Join(header, " "))
	b.WriteByte('\n')

	if failure.Message != "" {
		fmt.Fprintf(&b, "        Message: %s\n", failure.Message)
	}
	if failure.Fingerprint != "" {
		fmt.Fprintf(&b, "        Fingerprint: %s\n", failure.Fingerprint)
	}
	if failure.ContextID != nil {
		fmt.Fprintf(&b, "        Context: %d\n", *failure.ContextID)
	}
	if s.verbose && failure.StackTrace != "" {
		b.WriteString("        Stack trace:\n")
		for _, line := range strings.Split(failure.StackTrace, "\n") {
			fmt.Fprintf(&b, "          %s\n", line)
		}
	}

	// One write per failure keeps concurrent output from interleaving.
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.writer(), b.String())
	return err
}

// Flush is a no-op for stderr sink.
func (s *stderrSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op for stderr sink.
func (s *stderrSink) Close() error {
	return nil
}
