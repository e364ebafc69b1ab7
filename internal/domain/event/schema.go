package event

import (
	"fmt"
	"time"
)

// Record is the structured, self-describing form of an event: a JSON-shaped
// object. It is an alias so that records flow into encoding/json and schema
// validators without conversion.
type Record = map[string]any

// Envelope members present on every record.
const (
	FieldKind          = "kind"
	FieldSchemaVersion = "schema_version"
	FieldTimestamp     = "timestamp"
)

// FieldType is the JSON type of a variant field.
type FieldType string

// Field types.
const (
	TypeBool   FieldType = "boolean"
	TypeInt    FieldType = "integer"
	TypeString FieldType = "string"
	TypeObject FieldType = "object"
	TypeArray  FieldType = "array"
	TypeAny    FieldType = "any"
)

// Field describes one variant field.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	// Aliases are older names accepted on decode.
	Aliases []string
}

// DecodeFunc rebuilds a variant from the payload members of a record.
// It runs the variant constructor, so the result is fully validated.
type DecodeFunc func(ts time.Time, r Record) (Event, error)

// Schema is the encode/decode rule for one (kind, version) pair.
type Schema struct {
	Kind    Kind
	Version int
	Fields  []Field
	Decode  DecodeFunc
}

// Label renders the pair as "Kind.Version".
func (s Schema) Label() string {
	return fmt.Sprintf("%s.%d", s.Kind, s.Version)
}

// Encode returns the payload of e after checking that e belongs to s.
func (s Schema) Encode(e Event) (Record, error) {
	if e.Kind() != s.Kind || e.SchemaVersion() != s.Version {
		return nil, fmt.Errorf("schema %s cannot encode %s.%d", s.Label(), e.Kind(), e.SchemaVersion())
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e.Payload(), nil
}

func optional(name string, t FieldType, aliases ...string) Field {
	return Field{Name: name, Type: t, Aliases: aliases}
}

func required(name string, t FieldType) Field {
	return Field{Name: name, Type: t, Required: true}
}

// Schemas returns the built-in schema of every variant at its current
// version.
func Schemas() []Schema {
	return []Schema{
		{Kind: KindPlay, Version: 1, Decode: decodePlay, Fields: []Field{
			required("value", TypeBool),
		}},
		{Kind: KindSetCurrentFrame, Version: 1, Decode: decodeSetCurrentFrame, Fields: []Field{
			optional("time", TypeObject),
		}},
		{Kind: KindNewPresenter, Version: 1, Decode: decodeNewPresenter, Fields: []Field{
			optional("presenter_hash", TypeString),
		}},
		{Kind: KindNewParticipant, Version: 1, Decode: decodeNewParticipant},
		{Kind: KindSharedKeyRequest, Version: 1, Decode: decodeSharedKeyRequest, Fields: []Field{
			optional("key", TypeString),
		}},
		{Kind: KindSharedKeyResponse, Version: 1, Decode: decodeSharedKeyResponse, Fields: []Field{
			optional("key", TypeString),
		}},
		{Kind: KindGetSession, Version: 1, Decode: decodeGetSession, Fields: []Field{
			optional("user", TypeString),
			optional("app", TypeString),
		}},
		{Kind: KindRequestSyncPlayback, Version: 1, Decode: decodeRequestSyncPlayback},
		{Kind: KindSyncPlayback, Version: 1, Decode: decodeSyncPlayback, Fields: []Field{
			optional("looping", TypeBool),
			optional("playing", TypeBool),
			optional("muted", TypeBool),
			optional("scrubbing", TypeBool),
			optional("playback_range", TypeObject),
			optional("current_time", TypeObject),
			optional("output_bounds", TypeObject),
			optional("source", TypeAny),
			optional("source_index", TypeInt),
		}},
		{Kind: KindMediaChange, Version: 1, Decode: decodeMediaChange, Fields: []Field{
			optional("media_reference", TypeObject, "mediaReference"),
		}},
		{Kind: KindPaintStart, Version: 1, Decode: decodePaintStart, Fields: []Field{
			optional("source_index", TypeInt),
			required("uuid", TypeString),
			optional("friendly_name", TypeString),
			optional("participant_hash", TypeString),
			required("rgba", TypeArray),
			optional("type", TypeString),
			optional("brush", TypeString),
			optional("visible", TypeBool),
			optional("name", TypeString),
			optional("effect_name", TypeString),
			optional("layer_range", TypeObject),
			optional("hold", TypeBool),
			optional("ghost", TypeBool),
			optional("ghost_before", TypeBool),
			optional("ghost_after", TypeBool),
		}},
		{Kind: KindPaintPoint, Version: 1, Decode: decodePaintPoint, Fields: []Field{
			optional("source_index", TypeInt),
			required("uuid", TypeString),
			optional("layer_range", TypeObject),
			required("point", TypeObject),
		}},
		{Kind: KindPaintEnd, Version: 1, Decode: decodePaintEnd, Fields: []Field{
			required("uuid", TypeString),
			optional("point", TypeAny),
		}},
	}
}
