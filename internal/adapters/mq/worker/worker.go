// Package worker drains queued events into the event log.
//
// A single worker owns the log for the lifetime of a session, which keeps
// appends in enqueue order.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/okian/syncevents/internal/adapters/eventlog"
	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/pkg/logger"
	"github.com/okian/syncevents/pkg/metrics"
)

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan event.Event
}

// Worker appends queued events to a log.
type Worker interface {
	// Run starts the worker loop. It returns when the queue is drained and
	// closed, ctx is canceled, or Shutdown is called.
	Run(ctx context.Context)

	// Wait blocks until Run has returned.
	Wait(ctx context.Context) error

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker over an eventlog.Appender.
type InMemoryWorker struct {
	queue    Queue
	appender eventlog.Appender
	name     string
	onError  func(event.Event, error)

	processed atomic.Int64
	failed    atomic.Int64

	shutdown     chan struct{}
	shutdownOnce atomic.Bool
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, appender eventlog.Appender, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		appender: appender,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				w.logger.Debug(ctx, "queue drained",
					logger.Int64("processed", w.processed.Load()),
					logger.Int64("failed", w.failed.Load()))
				return
			}
			if err := w.process(ctx, e); err != nil {
				w.logger.Error(ctx, "error appending event", logger.String("kind", string(e.Kind())), logger.Error(err))
			}
		}
	}
}

// Wait blocks until Run has returned or ctx is done.
func (w *InMemoryWorker) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for worker: %w", ctx.Err())
	}
}

// Shutdown stops the worker. Events still queued are left in the queue.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	if w.shutdownOnce.CompareAndSwap(false, true) {
		close(w.shutdown)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns the number of events appended.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

// Failed returns the number of events that could not be appended.
func (w *InMemoryWorker) Failed() int64 { return w.failed.Load() }

func (w *InMemoryWorker) process(ctx context.Context, e event.Event) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if err := w.appender.Append(ctx, e); err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerError()
		if w.onError != nil {
			w.onError(e, err)
		}
		return fmt.Errorf("append %s: %w", e.Kind(), err)
	}
	w.processed.Add(1)
	return nil
}
