// Package noop provides a sink that discards all failures.
// Useful for testing and for disabling reporting.
package noop

import (
	"context"

	"github.com/strongdm/ai-eventsink/pkg/eventsink/report"
)

type noopSink struct{}

// NewNoopSink creates a sink that discards all failures.
func NewNoopSink() report.Sink {
	return noopSink{}
}

func (noopSink) Write(ctx context.Context, failure report.Failure) error { return nil }

func (noopSink) Flush(ctx context.Context) error { return nil }

func (noopSink) Close() error { return nil }
