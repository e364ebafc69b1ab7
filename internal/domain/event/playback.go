package event

import (
	"fmt"
	"strings"

	"github.com/okian/syncevents/internal/domain/fields"
	"github.com/okian/syncevents/internal/domain/otio"
)

// Play toggles playback on or off.
type Play struct {
	header
	value bool
}

// NewPlay records a play (true) or pause (false).
func NewPlay(value bool, opts ...Option) (Play, error) {
	e := Play{header: newHeader(opts), value: value}
	return e, e.Validate()
}

func (Play) Kind() Kind         { return KindPlay }
func (Play) SchemaVersion() int { return 1 }

// Value reports whether playback was started.
func (e Play) Value() bool { return e.value }

// Validate implements Event.
func (e Play) Validate() error { return nil }

// Payload implements Event.
func (e Play) Payload() Record { return Record{"value": e.value} }

func (e Play) String() string { return fmt.Sprintf("Play(value=%t)", e.value) }

// SetCurrentFrame moves the playhead.
type SetCurrentFrame struct {
	header
	time *otio.RationalTime
}

// NewSetCurrentFrame records a seek. t may be nil.
func NewSetCurrentFrame(t *otio.RationalTime, opts ...Option) (SetCurrentFrame, error) {
	e := SetCurrentFrame{header: newHeader(opts)}
	if t != nil {
		c := *t
		e.time = &c
	}
	if err := e.Validate(); err != nil {
		return SetCurrentFrame{}, err
	}
	return e, nil
}

func (SetCurrentFrame) Kind() Kind         { return KindSetCurrentFrame }
func (SetCurrentFrame) SchemaVersion() int { return 1 }

// Time returns the new playhead position, if one was recorded.
func (e SetCurrentFrame) Time() (otio.RationalTime, bool) {
	if e.time == nil {
		return otio.RationalTime{}, false
	}
	return *e.time, true
}

// Validate implements Event.
func (e SetCurrentFrame) Validate() error {
	if e.time != nil && !e.time.IsValid() {
		return invalid(KindSetCurrentFrame, "time", "rate must be > 0 and value finite, got %s", *e.time)
	}
	return nil
}

// Payload implements Event.
func (e SetCurrentFrame) Payload() Record {
	r := Record{}
	if e.time != nil {
		r["time"] = e.time.Encode()
	}
	return r
}

func (e SetCurrentFrame) String() string {
	if e.time == nil {
		return "SetCurrentFrame(time=None)"
	}
	return fmt.Sprintf("SetCurrentFrame(time=%s)", *e.time)
}

// RequestSyncPlayback asks the presenter for a full playback snapshot.
type RequestSyncPlayback struct {
	header
}

// NewRequestSyncPlayback builds the marker event.
func NewRequestSyncPlayback(opts ...Option) (RequestSyncPlayback, error) {
	return RequestSyncPlayback{header: newHeader(opts)}, nil
}

func (RequestSyncPlayback) Kind() Kind         { return KindRequestSyncPlayback }
func (RequestSyncPlayback) SchemaVersion() int { return 1 }
func (RequestSyncPlayback) Validate() error    { return nil }
func (RequestSyncPlayback) Payload() Record    { return Record{} }
func (RequestSyncPlayback) String() string     { return "RequestSyncPlayback()" }

// SyncPlaybackParams holds the optional parts of a playback snapshot.
type SyncPlaybackParams struct {
	Looping       *bool
	Playing       *bool
	Muted         *bool
	Scrubbing     *bool
	PlaybackRange *otio.TimeRange
	CurrentTime   *otio.RationalTime
	OutputBounds  *otio.Box2D
	// Source is an opaque JSON-shaped description of the playing source.
	Source      any
	SourceIndex int
}

// SyncPlayback is a full playback-state snapshot sent to participants.
type SyncPlayback struct {
	header
	p SyncPlaybackParams
}

// NewSyncPlayback builds a snapshot. Every field is optional; SourceIndex
// defaults to 0.
func NewSyncPlayback(p SyncPlaybackParams, opts ...Option) (SyncPlayback, error) {
	e := SyncPlayback{header: newHeader(opts), p: SyncPlaybackParams{
		Looping:       clonePtr(p.Looping),
		Playing:       clonePtr(p.Playing),
		Muted:         clonePtr(p.Muted),
		Scrubbing:     clonePtr(p.Scrubbing),
		PlaybackRange: clonePtr(p.PlaybackRange),
		CurrentTime:   clonePtr(p.CurrentTime),
		OutputBounds:  clonePtr(p.OutputBounds),
		SourceIndex:   p.SourceIndex,
	}}
	if p.Source != nil {
		src, err := fields.Canonical(p.Source)
		if err != nil {
			return SyncPlayback{}, invalid(KindSyncPlayback, "source", "has no JSON form: %v", err)
		}
		e.p.Source = src
	}
	if err := e.Validate(); err != nil {
		return SyncPlayback{}, err
	}
	return e, nil
}

func (SyncPlayback) Kind() Kind         { return KindSyncPlayback }
func (SyncPlayback) SchemaVersion() int { return 1 }

// Params returns a copy of the snapshot fields.
func (e SyncPlayback) Params() SyncPlaybackParams {
	p := e.p
	p.Looping = clonePtr(p.Looping)
	p.Playing = clonePtr(p.Playing)
	p.Muted = clonePtr(p.Muted)
	p.Scrubbing = clonePtr(p.Scrubbing)
	p.PlaybackRange = clonePtr(p.PlaybackRange)
	p.CurrentTime = clonePtr(p.CurrentTime)
	p.OutputBounds = clonePtr(p.OutputBounds)
	return p
}

// SourceIndex returns the index of the source in multi-source playback.
func (e SyncPlayback) SourceIndex() int { return e.p.SourceIndex }

// Validate implements Event.
func (e SyncPlayback) Validate() error {
	if e.p.SourceIndex < 0 {
		return invalid(KindSyncPlayback, "source_index", "must be >= 0, got %d", e.p.SourceIndex)
	}
	if e.p.PlaybackRange != nil && !e.p.PlaybackRange.IsValid() {
		return invalid(KindSyncPlayback, "playback_range", "invalid range %s", *e.p.PlaybackRange)
	}
	if e.p.CurrentTime != nil && !e.p.CurrentTime.IsValid() {
		return invalid(KindSyncPlayback, "current_time", "rate must be > 0 and value finite, got %s", *e.p.CurrentTime)
	}
	if e.p.OutputBounds != nil && !e.p.OutputBounds.IsValid() {
		return invalid(KindSyncPlayback, "output_bounds", "corners must be finite")
	}
	return nil
}

// Payload implements Event.
func (e SyncPlayback) Payload() Record {
	r := Record{"source_index": e.p.SourceIndex}
	putBool(r, "looping", e.p.Looping)
	putBool(r, "playing", e.p.Playing)
	putBool(r, "muted", e.p.Muted)
	putBool(r, "scrubbing", e.p.Scrubbing)
	if e.p.PlaybackRange != nil {
		r["playback_range"] = e.p.PlaybackRange.Encode()
	}
	if e.p.CurrentTime != nil {
		r["current_time"] = e.p.CurrentTime.Encode()
	}
	if e.p.OutputBounds != nil {
		r["output_bounds"] = e.p.OutputBounds.Encode()
	}
	if e.p.Source != nil {
		r["source"] = e.p.Source
	}
	return r
}

func (e SyncPlayback) String() string {
	var b strings.Builder
	b.WriteString("SyncPlayback(")
	fmt.Fprintf(&b, "looping=%s, playing=%s, muted=%s, scrubbing=%s",
		optString(e.p.Looping), optString(e.p.Playing), optString(e.p.Muted), optString(e.p.Scrubbing))
	if e.p.PlaybackRange != nil {
		fmt.Fprintf(&b, ", playback_range=%s", *e.p.PlaybackRange)
	}
	if e.p.CurrentTime != nil {
		fmt.Fprintf(&b, ", current_time=%s", *e.p.CurrentTime)
	}
	fmt.Fprintf(&b, ", source_index=%d)", e.p.SourceIndex)
	return b.String()
}

// MediaChange marks a switch to different media.
type MediaChange struct {
	header
	ref otio.MediaReference
}

// NewMediaChange records a media switch. A non-nil reference must resolve
// to a target URL.
func NewMediaChange(ref otio.MediaReference, opts ...Option) (MediaChange, error) {
	if ref != nil {
		c, err := otio.CanonicalReference(ref)
		if err != nil {
			return MediaChange{}, invalid(KindMediaChange, "media_reference.metadata", "has no JSON form: %v", err)
		}
		ref = c
	}
	e := MediaChange{header: newHeader(opts), ref: ref}
	if err := e.Validate(); err != nil {
		return MediaChange{}, err
	}
	return e, nil
}

func (MediaChange) Kind() Kind         { return KindMediaChange }
func (MediaChange) SchemaVersion() int { return 1 }

// MediaReference returns the new media, if any.
func (e MediaChange) MediaReference() otio.MediaReference { return e.ref }

// TargetURL returns the URL of the new media, or "" when there is none.
func (e MediaChange) TargetURL() string {
	if t, ok := e.ref.(otio.URLTargeter); ok {
		return t.TargetURL()
	}
	return ""
}

// Validate implements Event.
func (e MediaChange) Validate() error {
	if e.ref == nil {
		return nil
	}
	t, ok := e.ref.(otio.URLTargeter)
	if !ok {
		return invalid(KindMediaChange, "media_reference", "%s has no target url", e.ref.SchemaName())
	}
	if t.TargetURL() == "" {
		return invalid(KindMediaChange, "media_reference", "target url is empty")
	}
	return nil
}

// Payload implements Event.
func (e MediaChange) Payload() Record {
	r := Record{}
	if e.ref != nil {
		r["media_reference"] = e.ref.Encode()
	}
	return r
}

func (e MediaChange) String() string {
	if e.ref == nil {
		return "MediaChange(media_reference=None)"
	}
	return fmt.Sprintf("MediaChange(media_reference=%s(%q))", e.ref.SchemaName(), e.TargetURL())
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func putBool(r Record, name string, v *bool) {
	if v != nil {
		r[name] = *v
	}
}

func putString(r Record, name string, v *string) {
	if v != nil {
		r[name] = *v
	}
}

func optString[T any](p *T) string {
	if p == nil {
		return "None"
	}
	return fmt.Sprint(*p)
}
