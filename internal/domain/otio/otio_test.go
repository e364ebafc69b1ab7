package otio_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/syncevents/internal/domain/fields"
	"github.com/okian/syncevents/internal/domain/otio"
	"github.com/smartystreets/goconvey/convey"
)

func TestRationalTime(t *testing.T) {
	convey.Convey("Given rational times", t, func() {
		convey.So(otio.NewRationalTime(1, 24).IsValid(), convey.ShouldBeTrue)
		convey.So(otio.NewRationalTime(1, 0).IsValid(), convey.ShouldBeFalse)
		convey.So(otio.NewRationalTime(math.Inf(1), 24).IsValid(), convey.ShouldBeFalse)
		convey.So(otio.NewRationalTime(48, 24).Seconds(), convey.ShouldEqual, 2)

		convey.Convey("When encoded and decoded", func() {
			rt := otio.NewRationalTime(12.5, 23.976)
			got, err := otio.DecodeRationalTime(rt.Encode())

			convey.Convey("Then the value survives", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldResemble, rt)
			})
		})

		convey.Convey("When the rate is missing", func() {
			_, err := otio.DecodeRationalTime(map[string]any{"value": 1.0})

			convey.Convey("Then a missing field error is returned", func() {
				var fe *fields.Error
				convey.So(errors.As(err, &fe), convey.ShouldBeTrue)
				convey.So(fe.Missing, convey.ShouldBeTrue)
				convey.So(fe.Field, convey.ShouldEqual, "rate")
			})
		})
	})
}

func TestTimeRange(t *testing.T) {
	convey.Convey("Given a time range", t, func() {
		tr := otio.NewTimeRange(otio.NewRationalTime(10, 24), otio.NewRationalTime(48, 24))

		convey.So(tr.IsValid(), convey.ShouldBeTrue)
		convey.So(tr.EndTimeExclusive(), convey.ShouldResemble, otio.NewRationalTime(58, 24))

		convey.Convey("When the duration is nested wrongly", func() {
			m := tr.Encode()
			m["duration"] = map[string]any{"value": 1.0}
			_, err := otio.DecodeTimeRange(m)

			convey.Convey("Then the path names the nested field", func() {
				var fe *fields.Error
				convey.So(errors.As(err, &fe), convey.ShouldBeTrue)
				convey.So(fe.Field, convey.ShouldEqual, "duration.rate")
			})
		})
	})
}

func TestMediaReference(t *testing.T) {
	convey.Convey("Given media references", t, func() {
		convey.Convey("When an external reference round trips", func() {
			ref := otio.NewExternalReference("/mnt/p/s/sh/t/a.mov", map[string]any{"frames": 10})
			got, err := otio.DecodeMediaReference(ref.Encode())

			convey.Convey("Then it compares equal", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(otio.EqualMediaReferences(ref, got), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an image sequence resolves frames", func() {
			ref := &otio.ImageSequenceReference{
				TargetURLBase:    "/renders/",
				NamePrefix:       "shot.",
				NameSuffix:       ".exr",
				StartFrame:       1001,
				FrameStep:        1,
				Rate:             24,
				FrameZeroPadding: 4,
			}

			convey.So(ref.TargetURL(), convey.ShouldEqual, "/renders/shot.1001.exr")
			convey.So(ref.FrameURL(7), convey.ShouldEqual, "/renders/shot.0007.exr")

			got, err := otio.DecodeMediaReference(ref.Encode())
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldResemble, ref)
		})

		convey.Convey("When the schema label is absent but a target url exists", func() {
			got, err := otio.DecodeMediaReference(map[string]any{"target_url": "/x.mov"})

			convey.So(err, convey.ShouldBeNil)
			convey.So(got.SchemaName(), convey.ShouldEqual, otio.ExternalReferenceSchema)
		})

		convey.Convey("When the schema is unsupported", func() {
			_, err := otio.DecodeMediaReference(map[string]any{otio.SchemaKey: "GeneratorReference.1"})

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "unsupported")
		})
	})
}
