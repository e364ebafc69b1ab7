// Package codec turns events into self-describing records and back.
//
// A record is a flat JSON object: the envelope members kind, schema_version
// and timestamp, followed by the variant fields. Nested value types stay
// nested objects, so a record can be read without this package.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gowebpki/jcs"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/internal/domain/fields"
	"github.com/okian/syncevents/internal/domain/otio"
	"github.com/okian/syncevents/internal/domain/registry"
)

// Codec encodes and decodes events against a registry.
type Codec struct {
	reg       *registry.Registry
	canonical bool
	legacy    bool
	envelope  *jsonschema.Schema
}

// Option configures a Codec.
type Option func(*Codec)

// WithCanonical makes Marshal emit RFC 8785 canonical JSON.
func WithCanonical(enabled bool) Option {
	return func(c *Codec) {
		c.canonical = enabled
	}
}

// WithLegacyAliases controls whether records tagged only with an OTIO_SCHEMA
// label are accepted. Enabled by default.
func WithLegacyAliases(enabled bool) Option {
	return func(c *Codec) {
		c.legacy = enabled
	}
}

// New returns a codec over reg.
func New(reg *registry.Registry, opts ...Option) *Codec {
	c := &Codec{reg: reg, legacy: true, envelope: compileEnvelope()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the registry the codec resolves kinds against.
func (c *Codec) Registry() *registry.Registry { return c.reg }

// Encode builds the record for e.
func (c *Codec) Encode(e event.Event) (event.Record, error) {
	if e == nil {
		return nil, errors.New("encode: nil event")
	}
	s, err := c.reg.Lookup(e.Kind(), e.SchemaVersion())
	if err != nil {
		return nil, err
	}
	payload, err := s.Encode(e)
	if err != nil {
		return nil, err
	}
	r := make(event.Record, len(payload)+3)
	for k, v := range payload {
		r[k] = v
	}
	r[event.FieldKind] = string(e.Kind())
	r[event.FieldSchemaVersion] = e.SchemaVersion()
	r[event.FieldTimestamp] = FormatTimestamp(e.Timestamp())
	return r, nil
}

// Marshal encodes e as a single JSON line without the trailing newline.
func (c *Codec) Marshal(e event.Event) ([]byte, error) {
	r, err := c.Encode(e)
	if err != nil {
		return nil, err
	}
	return c.MarshalRecord(r)
}

// MarshalRecord renders an already encoded record as a JSON line.
func (c *Codec) MarshalRecord(r event.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	line := bytes.TrimRight(buf.Bytes(), "\n")
	if !c.canonical {
		return line, nil
	}
	out, err := jcs.Transform(line)
	if err != nil {
		return nil, fmt.Errorf("canonicalize record: %w", err)
	}
	return out, nil
}

// Decode rebuilds the event held by r. Failures are *registry.UnknownSchemaError,
// *event.MalformedRecordError or the variant's *event.ValidationError.
func (c *Codec) Decode(r event.Record) (event.Event, error) {
	if r == nil {
		return nil, &event.MalformedRecordError{Reason: "record is empty"}
	}
	if c.legacy && !fields.Has(r, event.FieldKind) && fields.Has(r, otio.SchemaKey) {
		return c.decodeLegacy(r)
	}
	if err := c.checkEnvelope(r); err != nil {
		return nil, err
	}

	kind := event.Kind(r[event.FieldKind].(string))
	version, ok := fields.ToInt(r[event.FieldSchemaVersion])
	if !ok {
		return nil, &event.MalformedRecordError{Kind: kind, Field: event.FieldSchemaVersion, Reason: "must be an integer"}
	}
	s, err := c.reg.Lookup(kind, version)
	if err != nil {
		return nil, err
	}
	ts, err := ParseTimestamp(r[event.FieldTimestamp].(string))
	if err != nil {
		return nil, &event.MalformedRecordError{Kind: kind, Field: event.FieldTimestamp, Err: err}
	}
	return s.Decode(ts, r)
}

// Records written by the original plugin carry only an OTIO_SCHEMA label
// and a timestamp.
func (c *Codec) decodeLegacy(r event.Record) (event.Event, error) {
	label, ok := r[otio.SchemaKey].(string)
	if !ok {
		return nil, &event.MalformedRecordError{Field: otio.SchemaKey, Reason: "must be a string"}
	}
	s, err := c.reg.Resolve(label)
	if err != nil {
		return nil, err
	}
	raw, err := fields.String(r, event.FieldTimestamp)
	if err != nil {
		return nil, &event.MalformedRecordError{Kind: s.Kind, Field: event.FieldTimestamp, Reason: err.Error()}
	}
	ts, err := ParseTimestamp(raw)
	if err != nil {
		return nil, &event.MalformedRecordError{Kind: s.Kind, Field: event.FieldTimestamp, Err: err}
	}
	return s.Decode(ts, legacyDefaults(s.Kind, r))
}

// legacyDefaults fills fields the first plugin generation did not write.
// Its play.1 records carry no value; playback was being enabled.
func legacyDefaults(kind event.Kind, r event.Record) event.Record {
	if kind != event.KindPlay || fields.Has(r, "value") {
		return r
	}
	out := make(event.Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	out["value"] = true
	return out
}

// UnmarshalRecord parses one JSON line into a record. Numbers are kept as
// json.Number so integers survive exactly.
func UnmarshalRecord(line []byte) (event.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &event.MalformedRecordError{Reason: "invalid JSON", Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &event.MalformedRecordError{Reason: "trailing data after record"}
	}
	r, ok := v.(map[string]any)
	if !ok {
		return nil, &event.MalformedRecordError{Reason: "record must be a JSON object, got " + fields.TypeName(v)}
	}
	return r, nil
}

// Unmarshal decodes one JSON line.
func (c *Codec) Unmarshal(line []byte) (event.Event, error) {
	r, err := UnmarshalRecord(line)
	if err != nil {
		return nil, err
	}
	return c.Decode(r)
}

// Error classes reported by Classify.
const (
	ClassUnknownSchema = "unknown_schema"
	ClassMalformed     = "malformed"
	ClassValidation    = "validation"
	ClassOther         = "other"
)

// Classify names the taxonomy class of a decode error.
func Classify(err error) string {
	switch {
	case errors.Is(err, registry.ErrUnknownSchema):
		return ClassUnknownSchema
	case errors.Is(err, event.ErrMalformedRecord):
		return ClassMalformed
	case errors.Is(err, event.ErrValidation):
		return ClassValidation
	default:
		return ClassOther
	}
}
