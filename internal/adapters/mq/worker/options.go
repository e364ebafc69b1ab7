package worker

import (
	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithErrorHandler registers fn to be called for every event that could not
// be appended.
func WithErrorHandler(fn func(e event.Event, err error)) Option {
	return func(w *InMemoryWorker) {
		w.onError = fn
	}
}
