package event

import (
	"fmt"
	"time"

	"github.com/okian/syncevents/internal/domain/fields"
	"github.com/okian/syncevents/internal/domain/otio"
)

func decodePlay(ts time.Time, r Record) (Event, error) {
	v, err := fields.Bool(r, "value")
	if err != nil {
		return nil, fieldError(KindPlay, err)
	}
	return NewPlay(v, WithTimestamp(ts))
}

func decodeSetCurrentFrame(ts time.Time, r Record) (Event, error) {
	t, err := optRationalTime(r, "time")
	if err != nil {
		return nil, fieldError(KindSetCurrentFrame, err)
	}
	return NewSetCurrentFrame(t, WithTimestamp(ts))
}

func decodeNewPresenter(ts time.Time, r Record) (Event, error) {
	h, err := fields.OptString(r, "presenter_hash")
	if err != nil {
		return nil, fieldError(KindNewPresenter, err)
	}
	return NewNewPresenter(h, WithTimestamp(ts))
}

func decodeNewParticipant(ts time.Time, _ Record) (Event, error) {
	return NewNewParticipant(WithTimestamp(ts))
}

func decodeSharedKeyRequest(ts time.Time, r Record) (Event, error) {
	k, err := fields.OptString(r, "key")
	if err != nil {
		return nil, fieldError(KindSharedKeyRequest, err)
	}
	return NewSharedKeyRequest(k, WithTimestamp(ts))
}

func decodeSharedKeyResponse(ts time.Time, r Record) (Event, error) {
	k, err := fields.OptString(r, "key")
	if err != nil {
		return nil, fieldError(KindSharedKeyResponse, err)
	}
	return NewSharedKeyResponse(k, WithTimestamp(ts))
}

func decodeGetSession(ts time.Time, r Record) (Event, error) {
	user, err := fields.OptString(r, "user")
	if err != nil {
		return nil, fieldError(KindGetSession, err)
	}
	app, err := fields.OptString(r, "app")
	if err != nil {
		return nil, fieldError(KindGetSession, err)
	}
	return NewGetSession(user, app, WithTimestamp(ts))
}

func decodeRequestSyncPlayback(ts time.Time, _ Record) (Event, error) {
	return NewRequestSyncPlayback(WithTimestamp(ts))
}

func decodeSyncPlayback(ts time.Time, r Record) (Event, error) {
	var p SyncPlaybackParams
	var err error
	for name, dst := range map[string]**bool{
		"looping":   &p.Looping,
		"playing":   &p.Playing,
		"muted":     &p.Muted,
		"scrubbing": &p.Scrubbing,
	} {
		if *dst, err = fields.OptBool(r, name); err != nil {
			return nil, fieldError(KindSyncPlayback, err)
		}
	}
	if p.PlaybackRange, err = optTimeRange(r, "playback_range"); err != nil {
		return nil, fieldError(KindSyncPlayback, err)
	}
	if p.CurrentTime, err = optRationalTime(r, "current_time"); err != nil {
		return nil, fieldError(KindSyncPlayback, err)
	}
	bo, _, err := fields.OptObject(r, "output_bounds")
	if err != nil {
		return nil, fieldError(KindSyncPlayback, err)
	}
	if bo != nil {
		b, err := otio.DecodeBox2D(bo)
		if err != nil {
			return nil, fieldError(KindSyncPlayback, fields.Nest("output_bounds", err))
		}
		p.OutputBounds = &b
	}
	if src, _, ok := fields.Lookup(r, "source"); ok {
		p.Source = src
	}
	if p.SourceIndex, err = fields.IntOr(r, "source_index", 0); err != nil {
		return nil, fieldError(KindSyncPlayback, err)
	}
	return NewSyncPlayback(p, WithTimestamp(ts))
}

func decodeMediaChange(ts time.Time, r Record) (Event, error) {
	mo, name, err := fields.OptObject(r, "media_reference", "mediaReference")
	if err != nil {
		return nil, fieldError(KindMediaChange, err)
	}
	var ref otio.MediaReference
	if mo != nil {
		if ref, err = otio.DecodeMediaReference(mo); err != nil {
			return nil, fieldError(KindMediaChange, fields.Nest(name, err))
		}
	}
	return NewMediaChange(ref, WithTimestamp(ts))
}

func decodePaintStart(ts time.Time, r Record) (Event, error) {
	var p PaintStartParams
	var err error
	fail := func(err error) (Event, error) { return nil, fieldError(KindPaintStart, err) }

	if p.SourceIndex, err = fields.IntOr(r, "source_index", 0); err != nil {
		return fail(err)
	}
	if p.UUID, err = fields.String(r, "uuid"); err != nil {
		return fail(err)
	}
	if p.RGBA, err = floats(r, "rgba"); err != nil {
		return fail(err)
	}
	for name, dst := range map[string]**string{
		"friendly_name":    &p.FriendlyName,
		"participant_hash": &p.ParticipantHash,
		"name":             &p.Name,
		"effect_name":      &p.EffectName,
	} {
		if *dst, err = fields.OptString(r, name); err != nil {
			return fail(err)
		}
	}
	for name, dst := range map[string]*string{"type": &p.Type, "brush": &p.Brush} {
		s, err := fields.OptString(r, name)
		if err != nil {
			return fail(err)
		}
		if s != nil {
			*dst = *s
		}
	}
	for name, dst := range map[string]**bool{
		"visible":      &p.Visible,
		"hold":         &p.Hold,
		"ghost":        &p.Ghost,
		"ghost_before": &p.GhostBefore,
		"ghost_after":  &p.GhostAfter,
	} {
		if *dst, err = fields.OptBool(r, name); err != nil {
			return fail(err)
		}
	}
	if p.LayerRange, err = optTimeRange(r, "layer_range"); err != nil {
		return fail(err)
	}
	return NewPaintStart(p, WithTimestamp(ts))
}

func decodePaintPoint(ts time.Time, r Record) (Event, error) {
	fail := func(err error) (Event, error) { return nil, fieldError(KindPaintPoint, err) }

	idx, err := fields.IntOr(r, "source_index", 0)
	if err != nil {
		return fail(err)
	}
	uuid, err := fields.String(r, "uuid")
	if err != nil {
		return fail(err)
	}
	po, err := fields.Object(r, "point")
	if err != nil {
		return fail(err)
	}
	pt, err := DecodePaintVertex(po)
	if err != nil {
		return fail(fields.Nest("point", err))
	}
	lr, err := optTimeRange(r, "layer_range")
	if err != nil {
		return fail(err)
	}
	return NewPaintPoint(idx, uuid, pt, lr, WithTimestamp(ts))
}

func decodePaintEnd(ts time.Time, r Record) (Event, error) {
	fail := func(err error) (Event, error) { return nil, fieldError(KindPaintEnd, err) }

	uuid, err := fields.String(r, "uuid")
	if err != nil {
		return fail(err)
	}
	raw, _, ok := fields.Lookup(r, "point")
	if !ok {
		return NewPaintEnd(uuid, WithTimestamp(ts))
	}
	switch v := raw.(type) {
	case map[string]any:
		pt, err := DecodePaintVertex(v)
		if err != nil {
			return fail(fields.Nest("point", err))
		}
		return NewPaintEndAt(uuid, pt, WithTimestamp(ts))
	case []any:
		pts := make([]PaintVertex, len(v))
		for i, item := range v {
			name := fmt.Sprintf("point[%d]", i)
			o, ok := item.(map[string]any)
			if !ok {
				return fail(&fields.Error{Field: name, Reason: "must be an object, got " + fields.TypeName(item)})
			}
			if pts[i], err = DecodePaintVertex(o); err != nil {
				return fail(fields.Nest(name, err))
			}
		}
		return NewPaintEndWith(uuid, pts, WithTimestamp(ts))
	default:
		return fail(&fields.Error{Field: "point", Reason: "must be an object or an array, got " + fields.TypeName(raw)})
	}
}

func optRationalTime(r Record, name string) (*otio.RationalTime, error) {
	o, _, err := fields.OptObject(r, name)
	if err != nil || o == nil {
		return nil, err
	}
	t, err := otio.DecodeRationalTime(o)
	if err != nil {
		return nil, fields.Nest(name, err)
	}
	return &t, nil
}

func optTimeRange(r Record, name string) (*otio.TimeRange, error) {
	o, _, err := fields.OptObject(r, name)
	if err != nil || o == nil {
		return nil, err
	}
	tr, err := otio.DecodeTimeRange(o)
	if err != nil {
		return nil, fields.Nest(name, err)
	}
	return &tr, nil
}

func floats(r Record, name string) ([]float64, error) {
	l, err := fields.List(r, name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(l))
	for i, v := range l {
		f, ok := fields.ToFloat(v)
		if !ok {
			return nil, &fields.Error{Field: fmt.Sprintf("%s[%d]", name, i), Reason: "must be a number, got " + fields.TypeName(v)}
		}
		out[i] = f
	}
	return out, nil
}
