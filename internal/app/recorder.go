// Package service records a review session: event sources emit events,
// a bounded queue hands them to a single writer, and the writer appends
// them to the session log.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/syncevents/internal/adapters/eventlog"
	eventqueue "github.com/okian/syncevents/internal/adapters/mq/queue"
	"github.com/okian/syncevents/internal/adapters/mq/worker"
	"github.com/okian/syncevents/internal/domain/codec"
	"github.com/okian/syncevents/internal/domain/dedupe"
	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/pkg/logger"
	"github.com/okian/syncevents/pkg/metrics"
)

const defaultQueueSize = 4096

// mediaKey is the dedupe key of the media on screen.
const mediaKey = "media"

// Recorder owns one session log.
type Recorder struct {
	mu sync.RWMutex

	codec       *codec.Codec
	dir         string
	path        string
	queueSize   int
	syncWrites  bool
	dedupeMedia bool
	now         func() time.Time

	writer  *eventlog.Writer
	queue   *eventqueue.InMemoryQueue
	worker  *worker.InMemoryWorker
	deduper dedupe.Deduper
	mediaMu sync.Mutex

	cancelRun context.CancelFunc

	started bool
	stopped bool

	errMu    sync.Mutex
	firstErr error

	logger logger.Logger
}

// New constructs a Recorder encoding with c.
func New(c *codec.Codec, opts ...Option) *Recorder {
	r := &Recorder{
		codec:       c,
		dir:         filepath.Join(os.TempDir(), "syncevents"),
		queueSize:   defaultQueueSize,
		syncWrites:  true,
		dedupeMedia: true,
		now:         time.Now,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start opens the session log and starts the writer.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return ErrStopped
	}
	if r.started {
		return nil
	}

	path := r.path
	if path == "" {
		p, err := eventlog.NewSessionPath(r.dir, r.now())
		if err != nil {
			return err
		}
		path = p
	}

	r.writer = eventlog.NewWriter(r.codec,
		eventlog.WithSync(r.syncWrites),
		eventlog.WithLogger(r.logger.Named("eventlog")),
	)
	if err := r.writer.Open(path); err != nil {
		return err
	}
	r.path = path

	r.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxKeys(1))
	r.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(r.queueSize))
	r.worker = worker.NewInMemoryWorker(r.queue, r.writer,
		worker.WithName("writer"),
		worker.WithLogger(r.logger),
		worker.WithErrorHandler(r.recordError),
	)
	// The writer outlives ctx so that Stop can drain the queue.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancelRun = cancel
	go r.worker.Run(runCtx)

	r.started = true
	r.logger.Info(ctx, "recording session",
		logger.String("path", path),
		logger.Int("queueSize", r.queueSize),
		logger.Bool("sync", r.syncWrites),
	)
	return nil
}

// Emit validates e and queues it for the log. It never waits for the disk:
// a full queue returns ErrQueueFull and a stopped recorder ErrStopped. A
// MediaChange repeating the media already recorded is dropped.
func (r *Recorder) Emit(ctx context.Context, e event.Event) error {
	if e == nil {
		return ErrNilEvent
	}
	if err := e.Validate(); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	switch {
	case r.stopped:
		return ErrStopped
	case !r.started:
		return ErrNotStarted
	}

	var restore func()
	if mc, ok := e.(event.MediaChange); ok && r.dedupeMedia {
		r.mediaMu.Lock()
		defer r.mediaMu.Unlock()

		prev, had := r.deduper.Last(ctx, mediaKey)
		if r.deduper.Repeat(ctx, mediaKey, mc.TargetURL()) {
			metrics.RecordEventSuppressed()
			r.logger.Debug(ctx, "repeated media change dropped", logger.String("target", mc.TargetURL()))
			return nil
		}
		restore = func() {
			if had {
				r.deduper.Set(ctx, mediaKey, prev)
			} else {
				r.deduper.Forget(ctx, mediaKey)
			}
		}
	}

	if err := r.queue.Enqueue(ctx, e); err != nil {
		if restore != nil {
			restore()
		}
		switch {
		case errors.Is(err, eventqueue.ErrFull):
			return fmt.Errorf("%w: %s", ErrQueueFull, e.Kind())
		case errors.Is(err, eventqueue.ErrClosed):
			return ErrStopped
		default:
			return err
		}
	}
	metrics.RecordEventEmitted(string(e.Kind()))
	return nil
}

// Stop closes the queue, waits for queued events to be written and closes
// the log. If ctx ends first the remaining events are abandoned.
func (r *Recorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.stopped {
		r.stopped = true
		return nil
	}
	r.stopped = true

	r.logger.Info(ctx, "stopping recorder", logger.Int("queued", r.queue.Len()))
	_ = r.queue.Close()

	var errs []error
	if err := r.worker.Wait(ctx); err != nil {
		r.logger.Warn(ctx, "queue not drained", logger.Int("remaining", r.queue.Len()), logger.Error(err))
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		_ = r.worker.Shutdown(shutdownCtx)
		cancel()
		errs = append(errs, err)
	}
	r.cancelRun()
	if err := r.writer.Close(); err != nil {
		errs = append(errs, err)
	}

	r.logger.Info(ctx, "recorder stopped",
		logger.String("path", r.path),
		logger.Int64("appended", r.worker.Processed()),
		logger.Int64("failed", r.worker.Failed()),
	)
	return errors.Join(errs...)
}

// Path returns the session log path, or "" before Start.
func (r *Recorder) Path() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.started {
		return ""
	}
	return r.path
}

// Err returns the first append failure, if any.
func (r *Recorder) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.firstErr
}

func (r *Recorder) recordError(e event.Event, err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	if r.firstErr == nil {
		r.firstErr = fmt.Errorf("append %s: %w", e.Kind(), err)
	}
}

// Stats returns recorder statistics for diagnostics.
func (r *Recorder) Stats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := map[string]interface{}{
		"started":   r.started,
		"stopped":   r.stopped,
		"queueSize": r.queueSize,
		"path":      r.path,
	}
	if r.started {
		stats["queueLength"] = r.queue.Len()
		stats["appended"] = r.worker.Processed()
		stats["failed"] = r.worker.Failed()
	}
	return stats
}
