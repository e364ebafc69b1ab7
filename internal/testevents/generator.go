package testevents

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/internal/domain/otio"
	"github.com/okian/syncevents/internal/idgen"
)

const (
	randomFloatDivisor = 1000000
	brushSizeMin       = 2.0
	brushSizeRange     = 6.0
	strokeDrift        = 0.02
	reviewApp          = "syncevents"
)

// palette is cycled through for stroke colours.
var palette = [][]float64{
	{1, 0, 0, 1},
	{0, 1, 0, 1},
	{0.2, 0.4, 1, 1},
	{1, 1, 0, 0.8},
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

type builder struct {
	cfg    *Config
	seq    int
	events []event.Event
}

func (b *builder) next() event.Option {
	ts := b.cfg.Start.Add(time.Duration(b.seq) * b.cfg.Step)
	b.seq++
	return event.WithTimestamp(ts)
}

func (b *builder) add(e event.Event, err error) error {
	if err != nil {
		return err
	}
	b.events = append(b.events, e)
	return nil
}

// Generate builds a synthetic review session: a presenter joins, a
// participant syncs, each clip is loaded and scrubbed, and strokes are drawn
// over the first clip. Timestamps grow by cfg.Step from cfg.Start.
func Generate(ctx context.Context, cfg *Config) ([]event.Event, error) {
	c := *cfg
	c.normalize()
	b := &builder{cfg: &c}

	if err := b.session(); err != nil {
		return nil, fmt.Errorf("session events: %w", err)
	}
	for i, path := range c.Media {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.clip(path); err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
		if i == 0 {
			for s := 0; s < c.Strokes; s++ {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				if err := b.stroke(s); err != nil {
					return nil, fmt.Errorf("stroke %d: %w", s, err)
				}
			}
		}
	}
	if err := b.add(event.NewPlay(false, b.next())); err != nil {
		return nil, err
	}
	return b.events, nil
}

func (b *builder) session() error {
	hash, err := idgen.Hash()
	if err != nil {
		return err
	}
	key, err := idgen.SharedKey()
	if err != nil {
		return err
	}
	app := reviewApp
	if err := b.add(event.NewGetSession(nil, &app, b.next())); err != nil {
		return err
	}
	if err := b.add(event.NewNewPresenter(&hash, b.next())); err != nil {
		return err
	}
	if err := b.add(event.NewNewParticipant(b.next())); err != nil {
		return err
	}
	if err := b.add(event.NewSharedKeyRequest(nil, b.next())); err != nil {
		return err
	}
	if err := b.add(event.NewSharedKeyResponse(&key, b.next())); err != nil {
		return err
	}
	return b.add(event.NewRequestSyncPlayback(b.next()))
}

func (b *builder) clip(path string) error {
	ref := otio.NewExternalReference(path, nil)
	if err := b.add(event.NewMediaChange(ref, b.next())); err != nil {
		return err
	}
	start := otio.NewRationalTime(0, b.cfg.FrameRate)
	if err := b.add(event.NewSyncPlayback(event.SyncPlaybackParams{
		Playing:     event.Ptr(false),
		Looping:     event.Ptr(true),
		CurrentTime: &start,
	}, b.next())); err != nil {
		return err
	}
	if err := b.add(event.NewPlay(true, b.next())); err != nil {
		return err
	}
	for f := 1; f <= b.cfg.Frames; f++ {
		t := otio.NewRationalTime(float64(f), b.cfg.FrameRate)
		if err := b.add(event.NewSetCurrentFrame(&t, b.next())); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) stroke(n int) error {
	id := idgen.StrokeID()
	if err := b.add(event.NewPaintStart(event.PaintStartParams{
		UUID:         id,
		FriendlyName: event.Ptr(fmt.Sprintf("stroke-%d", n+1)),
		RGBA:         palette[n%len(palette)],
	}, b.next())); err != nil {
		return err
	}

	x, y := getRandomFloat(), getRandomFloat()
	size := brushSizeMin + getRandomFloat()*brushSizeRange
	var last event.PaintVertex
	for p := 0; p < b.cfg.PointsPerStroke; p++ {
		x += (getRandomFloat() - 0.5) * strokeDrift
		y += (getRandomFloat() - 0.5) * strokeDrift
		v, err := event.NewPaintVertex(x, y, size)
		if err != nil {
			return err
		}
		last = v
		if err := b.add(event.NewPaintPoint(0, id, v, nil, b.next())); err != nil {
			return err
		}
	}
	if b.cfg.PointsPerStroke == 0 {
		return b.add(event.NewPaintEnd(id, b.next()))
	}
	return b.add(event.NewPaintEndAt(id, last, b.next()))
}
