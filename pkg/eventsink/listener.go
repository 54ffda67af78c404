// listener.go defines the callback contracts and their function adapters.

package eventsink

import "context"

// Listener receives values dispatched by a Sink.
//
// HandleEvent returns nil when it finished synchronously, or a Completion
// that settles later. A panic inside HandleEvent is a synchronous failure.
//
// Listeners are registered by identity, so the value must be comparable.
// A non-comparable value, such as a func type with a HandleEvent method, is
// ignored by AddListener and is never reported by HasListener.
type Listener[T any] interface {
	HandleEvent(ctx context.Context, event T) Completion
}

// ErrorHandler receives listener failures routed by a Sink.
// A panic inside HandleError is recovered and discarded. As with Listener,
// non-comparable values cannot be registered.
type ErrorHandler interface {
	HandleError(err error)
}

// ListenerFunc adapts a function to Listener.
// Each adapter is a distinct listener, even when two wrap the same function.
type ListenerFunc[T any] struct {
	fn    func(ctx context.Context, event T) error
	async bool
}

// NewListener returns a synchronous listener. An error returned by fn is
// routed to the error handlers before Dispatch moves to the next listener.
func NewListener[T any](fn func(ctx context.Context, event T) error) *ListenerFunc[T] {
	return &ListenerFunc[T]{fn: fn}
}

// NewAsyncListener returns a listener that runs fn on its own goroutine.
// Dispatch does not wait for it; a returned error or panic is routed to the
// error handlers when fn finishes.
func NewAsyncListener[T any](fn func(ctx context.Context, event T) error) *ListenerFunc[T] {
	return &ListenerFunc[T]{fn: fn, async: true}
}

// HandleEvent calls the wrapped function.
func (l *ListenerFunc[T]) HandleEvent(ctx context.Context, event T) Completion {
	if l.async {
		return Go(ctx, func(ctx context.Context) error {
			return l.fn(ctx, event)
		})
	}
	if err := l.fn(ctx, event); err != nil {
		return Rejected(err)
	}
	return nil
}

// ErrorHandlerFunc adapts a function to ErrorHandler.
type ErrorHandlerFunc struct {
	fn func(err error)
}

// NewErrorHandler wraps fn as an ErrorHandler with its own identity.
func NewErrorHandler(fn func(err error)) *ErrorHandlerFunc {
	return &ErrorHandlerFunc{fn: fn}
}

// HandleError calls the wrapped function.
func (h *ErrorHandlerFunc) HandleError(err error) {
	h.fn(err)
}
