// Package event defines the session events recorded during a collaborative
// media review: playback control, presenter/participant handshakes, media
// switches and annotation strokes.
//
// Every variant is an immutable value built by a validating constructor.
// Decoding a record runs the same constructor, so a hand-edited record fails
// with the same error a bad constructor call would.
package event

import (
	"reflect"
	"time"
)

// Kind is the stable tag identifying a variant on the wire.
type Kind string

// Built-in event kinds.
const (
	KindPlay                Kind = "Play"
	KindSetCurrentFrame     Kind = "SetCurrentFrame"
	KindNewPresenter        Kind = "NewPresenter"
	KindNewParticipant      Kind = "NewParticipant"
	KindSharedKeyRequest    Kind = "SharedKeyRequest"
	KindSharedKeyResponse   Kind = "SharedKeyResponse"
	KindGetSession          Kind = "GetSession"
	KindRequestSyncPlayback Kind = "RequestSyncPlayback"
	KindSyncPlayback        Kind = "SyncPlayback"
	KindMediaChange         Kind = "MediaChange"
	KindPaintStart          Kind = "PaintStart"
	KindPaintPoint          Kind = "PaintPoint"
	KindPaintEnd            Kind = "PaintEnd"
)

// Event is implemented by every variant.
type Event interface {
	// Kind returns the variant tag.
	Kind() Kind
	// SchemaVersion returns the field-set version of the variant.
	SchemaVersion() int
	// Timestamp returns when the event happened, in UTC.
	Timestamp() time.Time
	// Payload returns the variant fields as a record fragment.
	// Optional fields that are unset are omitted.
	Payload() Record
	// Validate re-checks the variant invariants.
	Validate() error
	// String renders the event for diagnostics.
	String() string
}

// Option configures the common part of an event.
type Option func(*options)

type options struct {
	timestamp time.Time
	now       func() time.Time
}

// WithTimestamp pins the event time. A zero time means "now".
func WithTimestamp(t time.Time) Option {
	return func(o *options) {
		o.timestamp = t
	}
}

// WithClock overrides the clock used when no timestamp is given.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

type header struct {
	ts time.Time
}

func newHeader(opts []Option) header {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	ts := o.timestamp
	if ts.IsZero() {
		ts = o.now()
	}
	return header{ts: NormalizeTime(ts)}
}

// Timestamp implements Event.
func (h header) Timestamp() time.Time { return h.ts }

// NormalizeTime converts t to UTC at microsecond precision, the precision
// of the persisted ISO-8601 form.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// Equal reports whether two events carry the same kind, version, timestamp
// and field values.
func Equal(a, b Event) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind() == b.Kind() &&
		a.SchemaVersion() == b.SchemaVersion() &&
		a.Timestamp().Equal(b.Timestamp()) &&
		reflect.DeepEqual(a.Payload(), b.Payload())
}

// Ptr returns a pointer to v. It keeps optional constructor parameters terse.
func Ptr[T any](v T) *T {
	return &v
}
