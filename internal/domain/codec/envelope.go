package codec

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/okian/syncevents/internal/domain/event"
)

const envelopeSchemaURL = "https://syncevents.local/schemas/envelope.schema.json"

const envelopeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["kind", "schema_version", "timestamp"],
  "properties": {
    "kind": {"type": "string", "minLength": 1},
    "schema_version": {"type": "integer", "minimum": 1},
    "timestamp": {"type": "string", "minLength": 1}
  }
}`

func compileEnvelope() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(envelopeSchemaURL, strings.NewReader(envelopeSchema)); err != nil {
		panic(err)
	}
	return c.MustCompile(envelopeSchemaURL)
}

// checkEnvelope validates the kind, schema_version and timestamp members.
// Only those members are handed to the validator, in the plain JSON shapes
// it expects.
func (c *Codec) checkEnvelope(r event.Record) error {
	env := make(map[string]any, 3)
	for _, name := range []string{event.FieldKind, event.FieldSchemaVersion, event.FieldTimestamp} {
		if v, ok := r[name]; ok {
			env[name] = plainJSON(v)
		}
	}
	err := c.envelope.Validate(env)
	if err == nil {
		return nil
	}
	me := &event.MalformedRecordError{Reason: "bad envelope", Err: err}
	if k, ok := r[event.FieldKind].(string); ok {
		me.Kind = event.Kind(k)
	}
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		leaf := firstLeaf(ve)
		me.Field = strings.TrimPrefix(leaf.InstanceLocation, "/")
		me.Reason = leaf.Message
		me.Err = nil
	}
	return me
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

func plainJSON(v any) any {
	switch n := v.(type) {
	case int:
		return json.Number(strconv.Itoa(n))
	case int64:
		return json.Number(strconv.FormatInt(n, 10))
	case float64:
		return json.Number(strconv.FormatFloat(n, 'g', -1, 64))
	case string, bool, nil, json.Number:
		return v
	default:
		// Objects and arrays fail the type check either way.
		return map[string]any{}
	}
}
