package codec_test

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/okian/syncevents/internal/domain/codec"
	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/internal/domain/otio"
	"github.com/okian/syncevents/internal/domain/registry"
)

// Up to 2100-01-01.
const maxMicros = 4102444800000000

func roundTrips(c *codec.Codec, e event.Event, err error) bool {
	if err != nil {
		return false
	}
	line, err := c.Marshal(e)
	if err != nil {
		return false
	}
	got, err := c.Unmarshal(line)
	if err != nil {
		return false
	}
	return event.Equal(e, got)
}

func TestRoundTripPlayback(t *testing.T) {
	c := codec.New(registry.Builtin())
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("playback events survive marshal and unmarshal", prop.ForAll(
		func(micros int64, playing bool, value, rate float64, idx int, url string) bool {
			at := event.WithTimestamp(time.UnixMicro(micros))
			rt := otio.NewRationalTime(value, rate)
			tr := otio.NewTimeRange(rt, otio.NewRationalTime(rate, rate))

			play, err := event.NewPlay(playing, at)
			if !roundTrips(c, play, err) {
				return false
			}
			seek, err := event.NewSetCurrentFrame(&rt, at)
			if !roundTrips(c, seek, err) {
				return false
			}
			sync, err := event.NewSyncPlayback(event.SyncPlaybackParams{
				Looping:       event.Ptr(!playing),
				Playing:       event.Ptr(playing),
				PlaybackRange: &tr,
				CurrentTime:   &rt,
				OutputBounds:  &otio.Box2D{Min: otio.Vec2{X: -value, Y: 0}, Max: otio.Vec2{X: value, Y: rate}},
				Source:        map[string]any{"name": url, "layers": []any{idx, value}},
				SourceIndex:   idx,
			}, at)
			if !roundTrips(c, sync, err) {
				return false
			}
			media, err := event.NewMediaChange(otio.NewExternalReference("/"+url+".mov", map[string]any{"idx": idx}), at)
			return roundTrips(c, media, err)
		},
		gen.Int64Range(0, maxMicros),
		gen.Bool(),
		gen.Float64Range(-1e7, 1e7),
		gen.Float64Range(0.001, 240),
		gen.IntRange(0, 64),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

type shotInfo struct {
	Name   string  `json:"name"`
	Frames []int   `json:"frames"`
	Scale  float32 `json:"scale"`
}

func TestRoundTripTypedPayloads(t *testing.T) {
	c := codec.New(registry.Builtin())
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("typed sources and metadata survive marshal and unmarshal", prop.ForAll(
		func(micros int64, frames []int, counts map[string]int, name string, scale float32) bool {
			at := event.WithTimestamp(time.UnixMicro(micros))
			info := shotInfo{Name: name, Frames: frames, Scale: scale}

			for _, src := range []any{frames, counts, info, &info, []float32{scale}} {
				sync, err := event.NewSyncPlayback(event.SyncPlaybackParams{Source: src}, at)
				if !roundTrips(c, sync, err) {
					return false
				}
			}

			ext := otio.NewExternalReference("/mnt/"+name+".mov", map[string]any{
				"frames": frames,
				"counts": counts,
				"shot":   info,
			})
			media, err := event.NewMediaChange(ext, at)
			if !roundTrips(c, media, err) {
				return false
			}
			seq := &otio.ImageSequenceReference{
				TargetURLBase: "/mnt/" + name + "/",
				NameSuffix:    ".exr",
				StartFrame:    1,
				FrameStep:     1,
				Rate:          24,
				Metadata:      map[string]any{"counts": counts, "scale": scale},
			}
			media, err = event.NewMediaChange(seq, at)
			return roundTrips(c, media, err)
		},
		gen.Int64Range(0, maxMicros),
		gen.SliceOf(gen.IntRange(-1000000, 1000000)),
		gen.MapOf(gen.Identifier(), gen.IntRange(0, 1000)),
		gen.Identifier(),
		gen.Float32Range(-1000, 1000),
	))

	properties.TestingRun(t)
}

func TestRoundTripSession(t *testing.T) {
	c := codec.New(registry.Builtin())
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("session events survive marshal and unmarshal", prop.ForAll(
		func(micros int64, hash, key *string, user string) bool {
			at := event.WithTimestamp(time.UnixMicro(micros))

			presenter, err := event.NewNewPresenter(hash, at)
			if !roundTrips(c, presenter, err) {
				return false
			}
			participant, err := event.NewNewParticipant(at)
			if !roundTrips(c, participant, err) {
				return false
			}
			req, err := event.NewSharedKeyRequest(key, at)
			if !roundTrips(c, req, err) {
				return false
			}
			resp, err := event.NewSharedKeyResponse(key, at)
			if !roundTrips(c, resp, err) {
				return false
			}
			session, err := event.NewGetSession(&user, hash, at)
			if !roundTrips(c, session, err) {
				return false
			}
			sync, err := event.NewRequestSyncPlayback(at)
			return roundTrips(c, sync, err)
		},
		gen.Int64Range(0, maxMicros),
		gen.PtrOf(gen.AlphaString()),
		gen.PtrOf(gen.Identifier()),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestRoundTripPaint(t *testing.T) {
	c := codec.New(registry.Builtin())
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("stroke events survive marshal and unmarshal", prop.ForAll(
		func(micros int64, uuid string, idx int, r, g, b, a, x, y, size float64, hold bool) bool {
			at := event.WithTimestamp(time.UnixMicro(micros))
			lr := otio.NewTimeRange(otio.NewRationalTime(float64(idx), 24), otio.NewRationalTime(1, 24))

			start, err := event.NewPaintStart(event.PaintStartParams{
				SourceIndex:  idx,
				UUID:         uuid,
				FriendlyName: event.Ptr("artist"),
				RGBA:         []float64{r, g, b, a},
				Brush:        "gauss",
				Visible:      event.Ptr(!hold),
				LayerRange:   &lr,
				Hold:         event.Ptr(hold),
			}, at)
			if !roundTrips(c, start, err) {
				return false
			}
			v := event.PaintVertex{X: x, Y: y, Size: size}
			point, err := event.NewPaintPoint(idx, uuid, v, &lr, at)
			if !roundTrips(c, point, err) {
				return false
			}
			end, err := event.NewPaintEnd(uuid, at)
			if !roundTrips(c, end, err) {
				return false
			}
			endAt, err := event.NewPaintEndAt(uuid, v, at)
			if !roundTrips(c, endAt, err) {
				return false
			}
			endWith, err := event.NewPaintEndWith(uuid, []event.PaintVertex{v, v}, at)
			return roundTrips(c, endWith, err)
		},
		gen.Int64Range(0, maxMicros),
		gen.Identifier(),
		gen.IntRange(0, 8),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
		gen.Float64Range(-4096, 4096),
		gen.Float64Range(-4096, 4096),
		gen.Float64Range(0, 64),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
