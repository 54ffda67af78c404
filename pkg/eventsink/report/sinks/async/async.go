// Package async provides a sink wrapper with a bounded queue, so that
// recording a failure never blocks the error handler that reported it.
// When the queue is full the oldest queued failure is dropped.
package async

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/strongdm/ai-eventsink/pkg/eventsink/report"
)

// AsyncSinkOption configures the async sink.
type AsyncSinkOption func(*asyncSinkConfig)

type asyncSinkConfig struct {
	queueSize int
	onDropped func(count int)
}

// WithQueueSize sets the maximum number of queued failures (default: 1000).
func WithQueueSize(size int) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithOnDropped sets a callback invoked when failures are dropped because
// the queue is full.
func WithOnDropped(fn func(count int)) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		c.onDropped = fn
	}
}

type asyncSink struct {
	inner report.Sink
	queue chan report.Failure
	done  chan struct{}
	wg    sync.WaitGroup

	// mu is held for reading while enqueuing and for writing while closing,
	// so no send can race with shutdown.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once

	// pending counts failures queued or being written.
	pending   atomic.Int64
	onDropped func(count int)
}

// NewAsyncSink wraps inner with a bounded queue drained by one goroutine.
func NewAsyncSink(inner report.Sink, opts ...AsyncSinkOption) report.Sink {
	cfg := &asyncSinkConfig{queueSize: 1000}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &asyncSink{
		inner:     inner,
		queue:     make(chan report.Failure, cfg.queueSize),
		done:      make(chan struct{}),
		onDropped: cfg.onDropped,
	}
	s.wg.Add(1)
	go s.processLoop()
	return s
}

func (s *asyncSink) processLoop() {
	defer s.wg.Done()
	for {
		select {
		case failure := <-s.queue:
			s.write(failure)
		case <-s.done:
			for {
				select {
				case failure := <-s.queue:
					s.write(failure)
				default:
					return
				}
			}
		}
	}
}

func (s *asyncSink) write(failure report.Failure) {
	defer s.pending.Add(-1)
	// Fire and forget: the caller already returned.
	_ = s.inner.Write(context.Background(), failure)
}

// Write enqueues a failure and returns immediately.
func (s *asyncSink) Write(ctx context.Context, failure report.Failure) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return report.ErrClosed
	}

	s.pending.Add(1)
	select {
	case s.queue <- failure:
		return nil
	default:
	}

	// Full: make room by dropping the oldest failure.
	select {
	case <-s.queue:
		s.pending.Add(-1)
		s.dropped()
	default:
	}
	select {
	case s.queue <- failure:
	default:
		s.pending.Add(-1)
		s.dropped()
	}
	return nil
}

func (s *asyncSink) dropped() {
	if s.onDropped != nil {
		s.onDropped(1)
	}
}

// Flush blocks until every queued failure has been written, then flushes
// the inner sink.
func (s *asyncSink) Flush(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for s.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return s.inner.Flush(ctx)
}

// Close drains the queue, stops the writer and closes the inner sink.
func (s *asyncSink) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		close(s.done)
		s.wg.Wait()
	})
	return s.inner.Close()
}
