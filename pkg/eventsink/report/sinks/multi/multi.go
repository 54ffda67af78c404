// Package multi provides a sink that fans out to multiple sinks.
// All sinks receive all failures; errors are aggregated.
package multi

import (
	"context"
	"errors"

	"github.com/strongdm/ai-eventsink/pkg/eventsink/report"
)

type multiSink struct {
	sinks []report.Sink
}

// NewMultiSink creates a sink that writes to every given sink.
// Nil sinks are skipped. Errors are aggregated via errors.Join.
func NewMultiSink(sinks ...report.Sink) report.Sink {
	m := &multiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *multiSink) each(fn func(report.Sink) error) error {
	var errs []error
	for _, s := range m.sinks {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Write sends the failure to all sinks, even if some fail.
func (m *multiSink) Write(ctx context.Context, failure report.Failure) error {
	return m.each(func(s report.Sink) error {
		return s.Write(ctx, failure)
	})
}

// Flush flushes all sinks.
func (m *multiSink) Flush(ctx context.Context) error {
	return m.each(func(s report.Sink) error {
		return s.Flush(ctx)
	})
}

// Close closes all sinks.
func (m *multiSink) Close() error {
	return m.each(func(s report.Sink) error {
		return s.Close()
	})
}
