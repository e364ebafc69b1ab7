package registry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/internal/domain/registry"
	"github.com/smartystreets/goconvey/convey"
)

func playV2() event.Schema {
	s := event.Schemas()[0]
	s.Version = 2
	s.Decode = func(ts time.Time, r event.Record) (event.Event, error) {
		return event.NewPlay(true, event.WithTimestamp(ts))
	}
	return s
}

func TestRegister(t *testing.T) {
	convey.Convey("Given an empty registry", t, func() {
		r := registry.New()
		play := event.Schemas()[0]

		convey.Convey("When a schema is registered twice", func() {
			err1 := r.Register(play)
			err2 := r.Register(play)

			convey.Convey("Then the second registration fails", func() {
				convey.So(err1, convey.ShouldBeNil)
				convey.So(errors.Is(err2, registry.ErrDuplicateRegistration), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a schema lacks a decoder", func() {
			err := r.Register(event.Schema{Kind: "Broken", Version: 1})

			convey.So(errors.Is(err, registry.ErrInvalidSchema), convey.ShouldBeTrue)
		})

		convey.Convey("When two versions of a kind exist", func() {
			r.MustRegister(play, playV2())

			convey.Convey("Then Latest picks the newest and Lookup both", func() {
				s, err := r.Latest(event.KindPlay)
				convey.So(err, convey.ShouldBeNil)
				convey.So(s.Version, convey.ShouldEqual, 2)

				s, err = r.Lookup(event.KindPlay, 1)
				convey.So(err, convey.ShouldBeNil)
				convey.So(s.Version, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the registry is frozen", func() {
			r.Freeze()
			err := r.Register(play)

			convey.Convey("Then registration is refused", func() {
				convey.So(r.Frozen(), convey.ShouldBeTrue)
				convey.So(errors.Is(err, registry.ErrFrozen), convey.ShouldBeTrue)
			})
		})
	})
}

func TestLookup(t *testing.T) {
	convey.Convey("Given the built-in registry", t, func() {
		r := registry.Builtin()

		convey.Convey("When an unknown kind is looked up", func() {
			_, err := r.Lookup("NotARealEvent", 1)

			convey.Convey("Then UnknownSchema is returned", func() {
				var ue *registry.UnknownSchemaError
				convey.So(errors.As(err, &ue), convey.ShouldBeTrue)
				convey.So(ue.Kind, convey.ShouldEqual, event.Kind("NotARealEvent"))
				convey.So(errors.Is(err, registry.ErrUnknownSchema), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a known kind has an unknown version", func() {
			_, err := r.Lookup(event.KindPlay, 7)

			convey.So(errors.Is(err, registry.ErrUnknownSchema), convey.ShouldBeTrue)
		})

		convey.Convey("When labels are resolved", func() {
			legacy, err1 := r.Resolve("play.1")
			current, err2 := r.Resolve("PaintStart.1")
			_, err3 := r.Resolve("PaintStart")

			convey.Convey("Then aliases and plain labels both work", func() {
				convey.So(err1, convey.ShouldBeNil)
				convey.So(legacy.Kind, convey.ShouldEqual, event.KindPlay)
				convey.So(err2, convey.ShouldBeNil)
				convey.So(current.Kind, convey.ShouldEqual, event.KindPaintStart)
				convey.So(errors.Is(err3, registry.ErrUnknownSchema), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When keys are listed", func() {
			keys := r.Keys()

			convey.Convey("Then every built-in is present in order", func() {
				convey.So(keys, convey.ShouldHaveLength, 13)
				convey.So(keys[0].Kind, convey.ShouldEqual, event.KindGetSession)
				convey.So(r.Aliases(), convey.ShouldContainKey, "set_current_frame.1")
			})
		})
	})
}

func TestDefault(t *testing.T) {
	convey.Convey("Given the process-wide registry", t, func() {
		registry.Init()
		registry.Init()

		convey.So(registry.Default(), convey.ShouldNotBeNil)
		convey.So(registry.Default().Frozen(), convey.ShouldBeTrue)
	})
}
