package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/syncevents/internal/adapters/mq/queue"
	"github.com/okian/syncevents/internal/adapters/mq/worker"
	"github.com/okian/syncevents/internal/domain/event"
	logging "github.com/okian/syncevents/pkg/logger"
)

type mockQueue struct {
	eventChan chan event.Event
}

func newMockQueue() *mockQueue {
	return &mockQueue{eventChan: make(chan event.Event, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan event.Event { return mq.eventChan }

func (mq *mockQueue) Close() { close(mq.eventChan) }

type mockAppender struct {
	mu     sync.Mutex
	events []event.Event
	fail   map[event.Kind]error
}

func newMockAppender() *mockAppender {
	return &mockAppender{fail: map[event.Kind]error{}}
}

func (ma *mockAppender) Append(_ context.Context, e event.Event) error {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	if err, ok := ma.fail[e.Kind()]; ok {
		return err
	}
	ma.events = append(ma.events, e)
	return nil
}

func (ma *mockAppender) setError(k event.Kind, err error) {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	ma.fail[k] = err
}

func (ma *mockAppender) appended() []event.Event {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	return append([]event.Event(nil), ma.events...)
}

func mustPlay(v bool) event.Event {
	e, err := event.NewPlay(v)
	if err != nil {
		panic(err)
	}
	return e
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		q := newMockQueue()
		appender := newMockAppender()

		convey.Convey("When creating a worker with custom options", func() {
			w := worker.NewInMemoryWorker(q, appender,
				worker.WithName("test-worker"),
				worker.WithLogger(logging.Nop()),
			)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
				convey.So(w.Processed(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the queue is drained and closed", func() {
			w := worker.NewInMemoryWorker(q, appender)
			go w.Run(context.Background())

			q.eventChan <- mustPlay(true)
			rfc, _ := event.NewRequestSyncPlayback()
			q.eventChan <- rfc
			q.eventChan <- mustPlay(false)
			q.Close()

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			err := w.Wait(ctx)

			convey.Convey("Then every event is appended in order", func() {
				convey.So(err, convey.ShouldBeNil)
				got := appended(appender)
				convey.So(got, convey.ShouldResemble, []event.Kind{event.KindPlay, event.KindRequestSyncPlayback, event.KindPlay})
				convey.So(w.Processed(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When an append fails", func() {
			appendErr := errors.New("disk full")
			appender.setError(event.KindNewParticipant, appendErr)

			var mu sync.Mutex
			var reported []error
			w := worker.NewInMemoryWorker(q, appender, worker.WithErrorHandler(func(_ event.Event, err error) {
				mu.Lock()
				defer mu.Unlock()
				reported = append(reported, err)
			}))
			go w.Run(context.Background())

			np, _ := event.NewNewParticipant()
			q.eventChan <- np
			q.eventChan <- mustPlay(true)
			q.Close()

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			convey.So(w.Wait(ctx), convey.ShouldBeNil)

			convey.Convey("Then the failure is reported and later events still go through", func() {
				mu.Lock()
				defer mu.Unlock()
				convey.So(reported, convey.ShouldHaveLength, 1)
				convey.So(errors.Is(reported[0], appendErr), convey.ShouldBeTrue)
				convey.So(w.Failed(), convey.ShouldEqual, 1)
				convey.So(appended(appender), convey.ShouldResemble, []event.Kind{event.KindPlay})
			})
		})

		convey.Convey("When shutting down", func() {
			w := worker.NewInMemoryWorker(q, appender)
			go w.Run(context.Background())

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer shutdownCancel()

			err := w.Shutdown(shutdownCtx)

			convey.Convey("Then it should shutdown gracefully and tolerate a second call", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When context is cancelled", func() {
			w := worker.NewInMemoryWorker(q, appender)
			ctx, cancel := context.WithCancel(context.Background())
			go w.Run(ctx)
			cancel()

			waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
			defer waitCancel()

			convey.Convey("Then Run should return", func() {
				convey.So(w.Wait(waitCtx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When Wait times out", func() {
			w := worker.NewInMemoryWorker(q, appender)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()

			convey.Convey("Then it should return the context error", func() {
				err := w.Wait(ctx)
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})
	})
}

func TestWorkerWithInMemoryQueue(t *testing.T) {
	convey.Convey("Given an InMemoryQueue feeding a worker", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		appender := newMockAppender()
		w := worker.NewInMemoryWorker(q, appender)
		go w.Run(context.Background())

		for i := 0; i < 10; i++ {
			convey.So(q.Enqueue(context.Background(), mustPlay(i%2 == 0)), convey.ShouldBeNil)
		}
		convey.So(q.Close(), convey.ShouldBeNil)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		convey.So(w.Wait(ctx), convey.ShouldBeNil)

		convey.Convey("Then events arrive in enqueue order", func() {
			got := appender.appended()
			convey.So(got, convey.ShouldHaveLength, 10)
			for i, e := range got {
				convey.So(e.(event.Play).Value(), convey.ShouldEqual, i%2 == 0)
			}
		})
	})
}

func appended(a *mockAppender) []event.Kind {
	var kinds []event.Kind
	for _, e := range a.appended() {
		kinds = append(kinds, e.Kind())
	}
	return kinds
}
