// sink.go implements Sink, the typed broadcaster.

package eventsink

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Option configures a Sink.
type Option func(*sinkConfig)

type sinkConfig struct {
	logger    *log.Logger
	logErrors bool
}

// WithLogger sets the logger used by the default error handler.
// A nil logger disables its output.
func WithLogger(logger *log.Logger) Option {
	return func(c *sinkConfig) {
		c.logger = logger
	}
}

// WithLogErrors sets the initial value of LogErrors (default: true).
func WithLogErrors(enabled bool) Option {
	return func(c *sinkConfig) {
		c.logErrors = enabled
	}
}

// Sink broadcasts values of type T to a set of listeners and routes their
// failures to a set of error handlers. The zero value is not usable; create
// one with New.
type Sink[T any] struct {
	mu            sync.RWMutex
	listeners     *orderedSet[Listener[T]]
	errorHandlers *orderedSet[ErrorHandler]

	logErrors      atomic.Bool
	logger         *log.Logger
	defaultHandler *ErrorHandlerFunc

	inflight atomic.Int64
}

// New creates an empty Sink with the default error handler registered.
func New[T any](opts ...Option) *Sink[T] {
	cfg := &sinkConfig{
		logger:    log.New(os.Stderr, "eventsink: ", log.LstdFlags),
		logErrors: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Sink[T]{
		listeners:     newOrderedSet[Listener[T]](),
		errorHandlers: newOrderedSet[ErrorHandler](),
		logger:        cfg.logger,
	}
	s.logErrors.Store(cfg.logErrors)

	// LogErrors is read on every call, not captured here.
	s.defaultHandler = NewErrorHandler(func(err error) {
		if s.logErrors.Load() && s.logger != nil {
			s.logger.Printf("listener error: %v", err)
		}
	})
	s.AddErrorHandler(s.defaultHandler)

	return s
}

// LogErrors reports whether the default error handler prints errors.
func (s *Sink[T]) LogErrors() bool {
	return s.logErrors.Load()
}

// SetLogErrors enables or disables output from the default error handler.
func (s *Sink[T]) SetLogErrors(enabled bool) {
	s.logErrors.Store(enabled)
}

// DefaultErrorHandler returns the handler registered by New. Remove it to
// silence the built-in output regardless of LogErrors.
func (s *Sink[T]) DefaultErrorHandler() ErrorHandler {
	return s.defaultHandler
}

// AddListener registers l. Adding a registered listener, or one that is
// not comparable, is a no-op.
func (s *Sink[T]) AddListener(l Listener[T]) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.add(l)
}

// RemoveListener unregisters l. Removing an unknown listener is a no-op.
func (s *Sink[T]) RemoveListener(l Listener[T]) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.remove(l)
}

// HasListener reports whether l is registered.
func (s *Sink[T]) HasListener(l Listener[T]) bool {
	if l == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listeners.has(l)
}

// ListenerCount returns the number of registered listeners.
func (s *Sink[T]) ListenerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listeners.len()
}

// AddErrorHandler registers h. Adding a registered handler, or one that is
// not comparable, is a no-op.
func (s *Sink[T]) AddErrorHandler(h ErrorHandler) {
	if h == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorHandlers.add(h)
}

// RemoveErrorHandler unregisters h. Removing an unknown handler is a no-op.
func (s *Sink[T]) RemoveErrorHandler(h ErrorHandler) {
	if h == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorHandlers.remove(h)
}

// HasErrorHandler reports whether h is registered.
func (s *Sink[T]) HasErrorHandler(h ErrorHandler) bool {
	if h == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errorHandlers.has(h)
}

// ErrorHandlerCount returns the number of registered error handlers,
// including the default one while it is registered.
func (s *Sink[T]) ErrorHandlerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errorHandlers.len()
}

// Dispatch invokes every registered listener with event, in registration
// order, and returns once each has been called. It never waits for deferred
// completions and never panics because of a listener.
func (s *Sink[T]) Dispatch(ctx context.Context, event T) {
	s.mu.RLock()
	listeners := s.listeners.snapshot()
	s.mu.RUnlock()

	for _, l := range listeners {
		s.invoke(ctx, l, event)
	}
}

// invoke calls one listener and routes its failure, if any.
func (s *Sink[T]) invoke(ctx context.Context, l Listener[T], event T) {
	var c Completion
	func() {
		defer func() {
			if r := recover(); r != nil {
				c = Rejected(newPanicError(r))
			}
		}()
		c = l.HandleEvent(ctx, event)
	}()

	if c == nil {
		return
	}
	if done, err := settled(c); done {
		if err != nil {
			s.handleError(err)
		}
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Add(-1)
		if err, ok := <-c; ok && err != nil {
			s.handleError(err)
		}
	}()
}

// handleError passes err to every registered error handler. Handler panics
// are discarded.
func (s *Sink[T]) handleError(err error) {
	s.mu.RLock()
	handlers := s.errorHandlers.snapshot()
	s.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				_ = recover()
			}()
			h.HandleError(err)
		}()
	}
}

// Flush blocks until every deferred completion started by earlier Dispatch
// calls has settled and been routed, or ctx is done.
func (s *Sink[T]) Flush(ctx context.Context) error {
	if s.inflight.Load() == 0 {
		return nil
	}

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if s.inflight.Load() == 0 {
				return nil
			}
		}
	}
}
