// Package fields provides typed accessors over decoded JSON objects.
//
// Records arrive either straight from encoding/json (numbers as json.Number
// when the decoder uses UseNumber) or from an in-process encoder (numbers as
// Go ints and floats). Accessors accept both shapes so that the same decode
// path serves files and in-memory round trips.
package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Error describes a field that could not be read.
type Error struct {
	Field   string
	Reason  string
	Missing bool
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Reason
}

// Nest prefixes the field path of err with parent.
// Errors of other types are returned unchanged.
func Nest(parent string, err error) error {
	if err == nil {
		return nil
	}
	fe, ok := err.(*Error)
	if !ok {
		return err
	}
	return &Error{Field: parent + "." + fe.Field, Reason: fe.Reason, Missing: fe.Missing}
}

func missing(name string) error {
	return &Error{Field: name, Reason: "is required", Missing: true}
}

func wrongType(name, want string, v any) error {
	return &Error{Field: name, Reason: fmt.Sprintf("must be %s, got %s", want, TypeName(v))}
}

// Lookup returns the first non-null value stored under one of names,
// together with the name it was found under.
func Lookup(m map[string]any, names ...string) (any, string, bool) {
	for _, n := range names {
		if v, ok := m[n]; ok && v != nil {
			return v, n, true
		}
	}
	return nil, "", false
}

// Has reports whether any of names holds a non-null value.
func Has(m map[string]any, names ...string) bool {
	_, _, ok := Lookup(m, names...)
	return ok
}

// Bool reads a required boolean.
func Bool(m map[string]any, name string) (bool, error) {
	v, ok := m[name]
	if !ok || v == nil {
		return false, missing(name)
	}
	b, ok := v.(bool)
	if !ok {
		return false, wrongType(name, "a boolean", v)
	}
	return b, nil
}

// OptBool reads an optional boolean. Absent and null values yield nil.
func OptBool(m map[string]any, name string) (*bool, error) {
	if !Has(m, name) {
		return nil, nil
	}
	b, err := Bool(m, name)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// String reads a required string.
func String(m map[string]any, name string) (string, error) {
	v, ok := m[name]
	if !ok || v == nil {
		return "", missing(name)
	}
	s, ok := v.(string)
	if !ok {
		return "", wrongType(name, "a string", v)
	}
	return s, nil
}

// OptString reads an optional string under any of names.
func OptString(m map[string]any, names ...string) (*string, error) {
	v, n, ok := Lookup(m, names...)
	if !ok {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, wrongType(n, "a string", v)
	}
	return &s, nil
}

// Float reads a required number.
func Float(m map[string]any, name string) (float64, error) {
	v, ok := m[name]
	if !ok || v == nil {
		return 0, missing(name)
	}
	f, ok := ToFloat(v)
	if !ok {
		return 0, wrongType(name, "a number", v)
	}
	return f, nil
}

// Int reads a required integral number.
func Int(m map[string]any, name string) (int, error) {
	v, ok := m[name]
	if !ok || v == nil {
		return 0, missing(name)
	}
	i, ok := ToInt(v)
	if !ok {
		return 0, wrongType(name, "an integer", v)
	}
	return i, nil
}

// IntOr reads an optional integral number, returning def when absent.
func IntOr(m map[string]any, name string, def int) (int, error) {
	if !Has(m, name) {
		return def, nil
	}
	return Int(m, name)
}

// Object reads a required nested object under any of names.
func Object(m map[string]any, names ...string) (map[string]any, error) {
	v, n, ok := Lookup(m, names...)
	if !ok {
		return nil, missing(names[0])
	}
	o, ok := v.(map[string]any)
	if !ok {
		return nil, wrongType(n, "an object", v)
	}
	return o, nil
}

// OptObject reads an optional nested object under any of names.
func OptObject(m map[string]any, names ...string) (map[string]any, string, error) {
	v, n, ok := Lookup(m, names...)
	if !ok {
		return nil, "", nil
	}
	o, ok := v.(map[string]any)
	if !ok {
		return nil, n, wrongType(n, "an object", v)
	}
	return o, n, nil
}

// List reads a required array.
func List(m map[string]any, name string) ([]any, error) {
	v, ok := m[name]
	if !ok || v == nil {
		return nil, missing(name)
	}
	l, ok := v.([]any)
	if !ok {
		return nil, wrongType(name, "an array", v)
	}
	return l, nil
}

// ToFloat converts any JSON-shaped number to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// ToInt converts an integral JSON-shaped number to int.
// Floats are accepted only when they carry no fractional part.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint32:
		return int(n), true
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f >= -math.MinInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int(f), true
}

// Finite reports whether all values are neither NaN nor infinite.
func Finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Normalize rewrites a JSON-shaped value so that every number is a float64.
// Values decoded from disk and values built in memory then compare equal
// with reflect.DeepEqual.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	default:
		if f, ok := ToFloat(v); ok {
			return f
		}
		return v
	}
}

// Canonical reduces v to the value a JSON round trip would give back:
// objects become map[string]any, arrays []any and numbers float64. Values
// that cannot be marshalled return an error.
func Canonical(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return Normalize(out), nil
}

// TypeName names the JSON type of v for error messages.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if _, ok := ToFloat(v); ok {
		return "number"
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
}
