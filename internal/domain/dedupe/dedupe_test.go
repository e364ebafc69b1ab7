package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/syncevents/internal/domain/dedupe"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When it is created", func() {
			Convey("Then it tracks nothing", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When the same value is seen twice under a key", func() {
			first := d.Repeat(ctx, "media", "/show/a.mov")
			second := d.Repeat(ctx, "media", "/show/a.mov")

			Convey("Then only the second is a repeat", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the value changes and changes back", func() {
			d.Repeat(ctx, "media", "/show/a.mov")
			changed := d.Repeat(ctx, "media", "/show/b.mov")
			back := d.Repeat(ctx, "media", "/show/a.mov")

			Convey("Then each change counts as new", func() {
				So(changed, ShouldBeFalse)
				So(back, ShouldBeFalse)
			})
		})

		Convey("When keys are independent", func() {
			d.Repeat(ctx, "source-0", "/a.mov")
			other := d.Repeat(ctx, "source-1", "/a.mov")

			Convey("Then a value under another key is not a repeat", func() {
				So(other, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When a key is forgotten", func() {
			d.Repeat(ctx, "media", "/a.mov")
			d.Forget(ctx, "media")
			d.Forget(ctx, "missing")

			Convey("Then its next value is new", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.Repeat(ctx, "media", "/a.mov"), ShouldBeFalse)
			})
		})

		Convey("When a replaced value is set back", func() {
			d.Repeat(ctx, "media", "/a.mov")
			prev, ok := d.Last(ctx, "media")
			d.Repeat(ctx, "media", "/b.mov")
			d.Set(ctx, "media", prev)

			Convey("Then the restored value is a repeat again", func() {
				So(ok, ShouldBeTrue)
				So(prev, ShouldEqual, "/a.mov")
				So(d.Repeat(ctx, "media", "/a.mov"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When an unknown key is looked up", func() {
			_, ok := d.Last(ctx, "missing")

			Convey("Then nothing is reported", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxKeys(2))

		Convey("When a third key arrives", func() {
			d.Repeat(ctx, "k1", "v")
			d.Repeat(ctx, "k2", "v")
			d.Repeat(ctx, "k1", "v") // touch k1
			d.Repeat(ctx, "k3", "v")

			Convey("Then the least recently touched key is evicted", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.Repeat(ctx, "k1", "v"), ShouldBeTrue)
				So(d.Repeat(ctx, "k2", "v"), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxKeys(0))

		Convey("When many keys are recorded concurrently", func() {
			var wg sync.WaitGroup
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for i := 0; i < 500; i++ {
						d.Repeat(ctx, fmt.Sprintf("k-%d-%d", g, i), "v")
					}
				}(g)
			}
			wg.Wait()

			Convey("Then every key is kept", func() {
				So(d.Size(), ShouldEqual, 4000)
			})
		})
	})
}
