package testevents

import (
	"context"
	"errors"
	"fmt"
	"time"

	service "github.com/okian/syncevents/internal/app"
	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/pkg/logger"
)

// Retry policy for a full recorder queue.
const (
	maxEmitRetries = 50
	emitRetryDelay = 5 * time.Millisecond
)

// Emitter accepts events for recording.
type Emitter interface {
	Emit(ctx context.Context, e event.Event) error
}

// Run generates a session from config and emits it through em. A full queue
// is retried with a short delay; a rejected event is counted and skipped.
func Run(ctx context.Context, config *Config, em Emitter, log logger.Logger) (*Stats, []event.Event, error) {
	if log == nil {
		log = logger.Nop()
	}
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "generating review session",
		logger.Int("strokes", config.Strokes),
		logger.Int("pointsPerStroke", config.PointsPerStroke),
		logger.Int("frames", config.Frames),
		logger.Int("clips", len(config.Media)))

	events, err := Generate(ctx, config)
	if err != nil {
		return stats, nil, fmt.Errorf("event generation failed: %w", err)
	}
	stats.EventsGenerated = len(events)

	for _, e := range events {
		if err := emit(ctx, em, e, stats); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, service.ErrStopped) {
				return stats, events, err
			}
			stats.EventsRejected++
			log.Warn(ctx, "event rejected", logger.String("kind", string(e.Kind())), logger.Error(err))
			continue
		}
		stats.EventsEmitted++
		if e.Kind() == event.KindPaintEnd {
			stats.Strokes++
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logFinalStats(ctx, log, stats)
	return stats, events, nil
}

func emit(ctx context.Context, em Emitter, e event.Event, stats *Stats) error {
	for attempt := 0; ; attempt++ {
		err := em.Emit(ctx, e)
		if !errors.Is(err, service.ErrQueueFull) || attempt == maxEmitRetries {
			return err
		}
		stats.EventsRetried++
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(emitRetryDelay):
		}
	}
}

func logFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "session generated",
		logger.Int("generated", stats.EventsGenerated),
		logger.Int("emitted", stats.EventsEmitted),
		logger.Int("rejected", stats.EventsRejected),
		logger.Int("retried", stats.EventsRetried),
		logger.Int("strokes", stats.Strokes),
		logger.Duration("duration", stats.Duration))
}
