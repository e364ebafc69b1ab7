package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/syncevents/internal/app"
	"github.com/okian/syncevents/internal/config"
	"github.com/okian/syncevents/internal/domain/codec"
	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/internal/domain/registry"
	"github.com/okian/syncevents/pkg/logger"
)

func init() {
	if err := logger.InitWithWriter(os.Stderr, logger.FormatText); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

var sessionStart = time.Date(2025, 6, 23, 12, 58, 23, 0, time.UTC)

func newRecorder(t *testing.T, opts ...service.Option) *service.Recorder {
	t.Helper()
	base := []service.Option{
		service.WithLogDir(t.TempDir()),
		service.WithClock(func() time.Time { return sessionStart }),
		service.WithSyncWrites(false),
		service.WithLogger(logger.Named("recorder")),
	}
	return service.New(codec.New(registry.Builtin()), append(base, opts...)...)
}

func TestRecorder_Lifecycle(t *testing.T) {
	Convey("Given a new recorder", t, func() {
		rec := newRecorder(t)
		ctx := context.Background()
		play, _ := event.NewPlay(true)

		Convey("When emitting before Start", func() {
			err := rec.Emit(ctx, play)

			Convey("Then it should report ErrNotStarted", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(rec.Path(), ShouldBeEmpty)
			})
		})

		Convey("When starting the recorder", func() {
			err := rec.Start(ctx)
			defer rec.Stop(ctx)

			Convey("Then the log is named after the session start", func() {
				So(err, ShouldBeNil)
				So(filepath.Base(rec.Path()), ShouldEqual, "otio_events_20250623_125823.jsonl")
				So(rec.Stats()["started"], ShouldEqual, true)
				So(rec.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When emitting a nil or invalid event", func() {
			So(rec.Start(ctx), ShouldBeNil)
			defer rec.Stop(ctx)

			Convey("Then they are rejected before queuing", func() {
				So(errors.Is(rec.Emit(ctx, nil), service.ErrNilEvent), ShouldBeTrue)
				So(errors.Is(rec.Emit(ctx, event.PaintEnd{}), event.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When the recorder is stopped", func() {
			So(rec.Start(ctx), ShouldBeNil)
			So(rec.Stop(ctx), ShouldBeNil)

			Convey("Then emitting and restarting report ErrStopped", func() {
				So(errors.Is(rec.Emit(ctx, play), service.ErrStopped), ShouldBeTrue)
				So(errors.Is(rec.Start(ctx), service.ErrStopped), ShouldBeTrue)
				So(rec.Stop(ctx), ShouldBeNil)
			})
		})

		Convey("When Stop is given a context that has already ended", func() {
			So(rec.Start(ctx), ShouldBeNil)
			for i := 0; i < 50; i++ {
				So(rec.Emit(ctx, play), ShouldBeNil)
			}
			ended, cancel := context.WithCancel(ctx)
			cancel()
			err := rec.Stop(ended)

			Convey("Then the recorder still ends stopped with its log closed", func() {
				So(err == nil || errors.Is(err, context.Canceled), ShouldBeTrue)
				So(errors.Is(rec.Emit(ctx, play), service.ErrStopped), ShouldBeTrue)
				So(rec.Stop(ctx), ShouldBeNil)
				So(rec.Stats()["stopped"], ShouldEqual, true)
			})
		})

		Convey("When the log directory cannot be created", func() {
			blocker := filepath.Join(t.TempDir(), "file")
			So(os.WriteFile(blocker, nil, 0o600), ShouldBeNil)
			bad := newRecorder(t, service.WithLogDir(filepath.Join(blocker, "logs")))

			Convey("Then Start fails", func() {
				So(bad.Start(ctx), ShouldNotBeNil)
			})
		})
	})
}

func TestRecorder_WithConfig(t *testing.T) {
	Convey("Given a config", t, func() {
		cfg := config.New()
		cfg.LogDir = t.TempDir()
		cfg.QueueSize = 7
		cfg.SyncWrites = false

		rec := newRecorder(t, service.WithConfig(cfg))
		ctx := context.Background()

		Convey("Then the recorder uses its directory and queue size", func() {
			So(rec.Start(ctx), ShouldBeNil)
			defer rec.Stop(ctx)
			So(filepath.Dir(rec.Path()), ShouldEqual, cfg.LogDir)
			So(rec.Stats()["queueSize"], ShouldEqual, 7)
		})
	})
}
