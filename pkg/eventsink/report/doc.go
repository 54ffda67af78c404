// Package report records listener failures from an eventsink.Sink.
//
// NewErrorHandler returns an eventsink.ErrorHandler that converts each
// routed error into a Failure and hands it to a Reporter. The Reporter
// assigns an ID, a timestamp and a fingerprint, then writes the Failure to a
// report Sink (stderr, cxdb, async, multi, noop).
//
// # Quick Start
//
//	reporter := report.NewReporter(report.WithSink(stderr.NewStderrSink()))
//	defer reporter.Close()
//
//	events := eventsink.New[OrderPlaced]()
//	events.RemoveErrorHandler(events.DefaultErrorHandler())
//	events.AddErrorHandler(report.NewErrorHandler(reporter, report.WithSource("orders")))
//
// WithDefaultRedaction strips secrets and personal data from messages,
// metadata and stack traces before they reach the sink.
//
// Recording is best effort: errors from the Reporter are logged (when a
// logger is configured) and never reach the listener or the dispatcher.
package report
