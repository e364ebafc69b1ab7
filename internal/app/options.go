package service

import (
	"time"

	"github.com/okian/syncevents/internal/config"
	"github.com/okian/syncevents/pkg/logger"
)

// Option applies a configuration option to the Recorder.
type Option func(*Recorder)

// WithLogDir sets the directory that receives the session log.
func WithLogDir(dir string) Option {
	return func(r *Recorder) {
		if dir != "" {
			r.dir = dir
		}
	}
}

// WithPath records into path instead of a new file under the log directory.
func WithPath(path string) Option {
	return func(r *Recorder) {
		r.path = path
	}
}

// WithQueueSize sets the maximum number of events waiting for the writer.
func WithQueueSize(size int) Option {
	return func(r *Recorder) {
		if size > 0 {
			r.queueSize = size
		}
	}
}

// WithSyncWrites controls whether every append is fsynced.
func WithSyncWrites(enabled bool) Option {
	return func(r *Recorder) {
		r.syncWrites = enabled
	}
}

// WithMediaDedupe drops a MediaChange whose target equals the previous one.
func WithMediaDedupe(enabled bool) Option {
	return func(r *Recorder) {
		r.dedupeMedia = enabled
	}
}

// WithClock sets the clock used to name the session log.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets a custom logger for the recorder.
func WithLogger(l logger.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithConfig applies the recorder settings of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(r *Recorder) {
		for _, opt := range []Option{
			WithLogDir(cfg.LogDir),
			WithQueueSize(cfg.QueueSize),
			WithSyncWrites(cfg.SyncWrites),
			WithMediaDedupe(cfg.DedupeMedia),
		} {
			opt(r)
		}
	}
}
