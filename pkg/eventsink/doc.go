// Package eventsink provides a typed, single-event broadcaster with isolated
// failure handling.
//
// A Sink[T] holds a set of listeners and an independent set of error
// handlers. Dispatch hands a value to every listener; a listener that panics,
// or whose deferred completion fails, is reported to every error handler and
// never affects the other listeners or the caller of Dispatch.
//
// # Core Components
//
//   - Sink: the broadcaster, with add/remove/has for listeners and error handlers
//   - Listener: receives dispatched values and returns an optional Completion
//   - Completion: a deferred result; Dispatch never waits on it
//   - ErrorHandler: receives listener failures
//
// # Quick Start
//
//	sink := eventsink.New[OrderPlaced]()
//	sink.AddListener(eventsink.NewListener(func(ctx context.Context, e OrderPlaced) error {
//	    return index.Update(ctx, e)
//	}))
//	sink.AddListener(eventsink.NewAsyncListener(func(ctx context.Context, e OrderPlaced) error {
//	    return mailer.SendReceipt(ctx, e)
//	}))
//	sink.Dispatch(ctx, OrderPlaced{ID: "ord-1"})
//
// Failures are printed by a built-in error handler while LogErrors is true.
// Use the report package to record them to stderr, cxdb or any other
// report sink instead.
//
// # Identity
//
// Listeners and error handlers are stored by identity: the interface value
// is used as a map key, so implementations must be comparable. The adapters
// returned by NewListener, NewAsyncListener and NewErrorHandler are pointers
// and satisfy this. Keep the returned pointer to remove the entry later.
//
// # Concurrency
//
// All methods are safe for concurrent use. Listeners and handlers may add or
// remove entries from inside a callback; whether such a change is observed
// by a dispatch already in progress is unspecified. Deferred completions are
// watched on their own goroutines, so error handlers may be invoked
// concurrently and must be safe for concurrent use.
package eventsink
