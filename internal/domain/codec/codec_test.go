package codec_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/syncevents/internal/domain/codec"
	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/internal/domain/otio"
	"github.com/okian/syncevents/internal/domain/registry"
	"github.com/smartystreets/goconvey/convey"
)

var ts = time.Date(2025, 6, 23, 12, 58, 23, 123456000, time.UTC)

func TestEncode(t *testing.T) {
	convey.Convey("Given a codec over the built-in registry", t, func() {
		c := codec.New(registry.Builtin())

		convey.Convey("When a Play is marshaled", func() {
			e, _ := event.NewPlay(true, event.WithTimestamp(ts))
			line, err := c.Marshal(e)

			convey.Convey("Then the line carries the envelope and the value", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(line), convey.ShouldEqual,
					`{"kind":"Play","schema_version":1,"timestamp":"2025-06-23T12:58:23.123456Z","value":true}`)
			})
		})

		convey.Convey("When a seek is encoded", func() {
			e, _ := event.NewSetCurrentFrame(event.Ptr(otio.NewRationalTime(1, 24)), event.WithTimestamp(ts))
			r, err := c.Encode(e)

			convey.Convey("Then the time is a nested object", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(r["time"], convey.ShouldResemble, map[string]any{
					otio.SchemaKey: "RationalTime.1", "value": 1.0, "rate": 24.0,
				})
			})
		})

		convey.Convey("When the registry does not know the event", func() {
			empty := registry.New()
			e, _ := event.NewPlay(true)
			_, err := codec.New(empty).Encode(e)

			convey.So(errors.Is(err, registry.ErrUnknownSchema), convey.ShouldBeTrue)
		})

		convey.Convey("When canonical output is requested", func() {
			cc := codec.New(registry.Builtin(), codec.WithCanonical(true))
			e, _ := event.NewGetSession(event.Ptr("<ann>"), event.Ptr("rv"), event.WithTimestamp(ts))
			line, err := cc.Marshal(e)

			convey.Convey("Then keys are sorted and html is not escaped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(line), convey.ShouldEqual,
					`{"app":"rv","kind":"GetSession","schema_version":1,"timestamp":"2025-06-23T12:58:23.123456Z","user":"<ann>"}`)
			})
		})
	})
}

func TestDecode(t *testing.T) {
	convey.Convey("Given a codec over the built-in registry", t, func() {
		c := codec.New(registry.Builtin())

		convey.Convey("When the kind is unknown", func() {
			_, err := c.Unmarshal([]byte(`{"kind":"NotARealEvent","schema_version":1,"timestamp":"2025-06-23T12:58:23"}`))

			convey.So(errors.Is(err, registry.ErrUnknownSchema), convey.ShouldBeTrue)
			convey.So(codec.Classify(err), convey.ShouldEqual, codec.ClassUnknownSchema)
		})

		convey.Convey("When the envelope lacks a version", func() {
			_, err := c.Unmarshal([]byte(`{"kind":"Play","timestamp":"2025-06-23T12:58:23","value":true}`))

			convey.Convey("Then the record is malformed", func() {
				var me *event.MalformedRecordError
				convey.So(errors.As(err, &me), convey.ShouldBeTrue)
				convey.So(me.Reason, convey.ShouldContainSubstring, "schema_version")
			})
		})

		convey.Convey("When the version is not an integer", func() {
			_, err := c.Unmarshal([]byte(`{"kind":"Play","schema_version":"1","timestamp":"2025-06-23T12:58:23","value":true}`))

			convey.So(errors.Is(err, event.ErrMalformedRecord), convey.ShouldBeTrue)
		})

		convey.Convey("When the timestamp is not a date", func() {
			_, err := c.Unmarshal([]byte(`{"kind":"Play","schema_version":1,"timestamp":"yesterday","value":true}`))

			convey.So(errors.Is(err, event.ErrMalformedRecord), convey.ShouldBeTrue)
		})

		convey.Convey("When the line is truncated", func() {
			_, err := c.Unmarshal([]byte(`{"kind":"Play","schema_ver`))

			convey.So(codec.Classify(err), convey.ShouldEqual, codec.ClassMalformed)
		})

		convey.Convey("When the line is an array", func() {
			_, err := c.Unmarshal([]byte(`[1,2]`))

			convey.So(errors.Is(err, event.ErrMalformedRecord), convey.ShouldBeTrue)
		})

		convey.Convey("When Play holds a non-boolean", func() {
			_, err := c.Unmarshal([]byte(`{"kind":"Play","schema_version":1,"timestamp":"2025-06-23T12:58:23","value":1}`))

			convey.So(codec.Classify(err), convey.ShouldEqual, codec.ClassValidation)
		})

		convey.Convey("When an extra field is present", func() {
			e, err := c.Unmarshal([]byte(`{"kind":"PaintStart","schema_version":1,"timestamp":"2025-06-23T12:58:23.123456",` +
				`"source_index":0,"uuid":"test1234","rgba":[1.0,0.0,0.0,1.0],"type":"color","brush":"circle","visible":true,"pressure":0.4}`))

			convey.Convey("Then it decodes and the naive timestamp is UTC", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(e.Kind(), convey.ShouldEqual, event.KindPaintStart)
				convey.So(e.Timestamp().Equal(ts), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a record from the original plugin is read", func() {
			line := `{"OTIO_SCHEMA":"set_current_frame.1","timestamp":"2025-06-23T12:58:23.123456",` +
				`"time":{"OTIO_SCHEMA":"RationalTime.1","rate":24.0,"value":86400.0}}`
			e, err := c.Unmarshal([]byte(line))

			convey.Convey("Then the alias resolves", func() {
				convey.So(err, convey.ShouldBeNil)
				rt, ok := e.(event.SetCurrentFrame).Time()
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(rt.Value, convey.ShouldEqual, 86400)
			})

			convey.Convey("Then it is refused when aliases are off", func() {
				_, err := codec.New(registry.Builtin(), codec.WithLegacyAliases(false)).Unmarshal([]byte(line))
				convey.So(errors.Is(err, event.ErrMalformedRecord), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a play record from the first plugin generation has no value", func() {
			legacy, legacyErr := c.Unmarshal([]byte(`{"OTIO_SCHEMA":"play.1","timestamp":"2025-06-23T12:58:23"}`))
			paused, pausedErr := c.Unmarshal([]byte(`{"OTIO_SCHEMA":"play.1","timestamp":"2025-06-23T12:58:23","value":false}`))
			_, currentErr := c.Unmarshal([]byte(`{"kind":"Play","schema_version":1,"timestamp":"2025-06-23T12:58:23"}`))

			convey.Convey("Then it reads as playback enabled", func() {
				convey.So(legacyErr, convey.ShouldBeNil)
				convey.So(legacy.(event.Play).Value(), convey.ShouldBeTrue)
			})

			convey.Convey("Then an explicit value still wins", func() {
				convey.So(pausedErr, convey.ShouldBeNil)
				convey.So(paused.(event.Play).Value(), convey.ShouldBeFalse)
			})

			convey.Convey("Then current records still require the value", func() {
				convey.So(errors.Is(currentErr, event.ErrMalformedRecord), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When there is data after the record", func() {
			_, err := c.Unmarshal([]byte(`{"kind":"NewParticipant","schema_version":1,"timestamp":"2025-06-23T12:58:23"} {}`))

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(strings.Contains(err.Error(), "trailing"), convey.ShouldBeTrue)
		})
	})
}

func TestTimestamps(t *testing.T) {
	convey.Convey("Given timestamp strings", t, func() {
		for _, s := range []string{
			"2025-06-23T12:58:23.123456",
			"2025-06-23 12:58:23.123456",
			"2025-06-23T12:58:23.123456Z",
			"2025-06-23T14:58:23.123456+02:00",
			"2025-06-23T12:58:23.123456789Z",
		} {
			got, err := codec.ParseTimestamp(s)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got.Equal(ts), convey.ShouldBeTrue)
		}

		convey.So(codec.FormatTimestamp(ts), convey.ShouldEqual, "2025-06-23T12:58:23.123456Z")
		_, err := codec.ParseTimestamp("23/06/2025")
		convey.So(err, convey.ShouldNotBeNil)
	})
}
