// completion.go defines the deferred result returned by listeners.

package eventsink

import "context"

// Completion is the deferred result of a listener invocation.
//
// The producer sends at most one error and then closes the channel. A closed
// channel with no value, or a nil error, means success. A nil Completion
// means the listener finished synchronously without error.
type Completion <-chan error

// Rejected returns an already-settled Completion carrying err.
// Dispatch routes it immediately, like a synchronous failure.
func Rejected(err error) Completion {
	ch := make(chan error, 1)
	ch <- err
	close(ch)
	return ch
}

// Go runs fn on a new goroutine and returns its Completion.
// A panic in fn is recovered and delivered as a *PanicError.
//
// The context passed to fn keeps the values of ctx but is not cancelled
// when ctx is, so work started by Dispatch outlives the dispatching call.
func Go(ctx context.Context, fn func(ctx context.Context) error) Completion {
	ch := make(chan error, 1)
	detached := context.WithoutCancel(ctx)
	go func() {
		defer close(ch)
		defer func() {
			if r := recover(); r != nil {
				ch <- newPanicError(r)
			}
		}()
		if err := fn(detached); err != nil {
			ch <- err
		}
	}()
	return ch
}

// settled reports whether c has already completed, and its error if so.
func settled(c Completion) (bool, error) {
	select {
	case err, ok := <-c:
		if !ok {
			return true, nil
		}
		return true, err
	default:
		return false, nil
	}
}
