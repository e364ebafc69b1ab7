package otio

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/okian/syncevents/internal/domain/fields"
)

// Media reference schema labels.
const (
	ExternalReferenceSchema      = "ExternalReference.1"
	ImageSequenceReferenceSchema = "ImageSequenceReference.1"
	MissingReferenceSchema       = "MissingReference.1"
)

// MediaReference is any reference to the media behind a clip.
type MediaReference interface {
	// SchemaName returns the OTIO schema label, e.g. "ExternalReference.1".
	SchemaName() string
	// Encode renders the reference as a nested record object.
	Encode() map[string]any
}

// URLTargeter is implemented by references that resolve to a URL.
type URLTargeter interface {
	TargetURL() string
}

// EqualMediaReferences compares two references by value.
func EqualMediaReferences(a, b MediaReference) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a.Encode(), b.Encode())
}

// ExternalReference points at a single media file.
type ExternalReference struct {
	Target         string
	Name           string
	AvailableRange *TimeRange
	Metadata       map[string]any
}

// NewExternalReference returns a reference to target. Metadata is reduced
// to its JSON form so the reference compares equal to its decoded copy;
// metadata with no JSON form is kept as given and rejected by
// CanonicalReference.
func NewExternalReference(target string, metadata map[string]any) *ExternalReference {
	ref := &ExternalReference{Target: target, Metadata: metadata}
	if m, err := CanonicalMetadata(metadata); err == nil {
		ref.Metadata = m
	}
	return ref
}

// CanonicalMetadata returns metadata as it reads back from a record.
// Empty metadata becomes nil.
func CanonicalMetadata(metadata map[string]any) (map[string]any, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	v, err := fields.Canonical(metadata)
	if err != nil {
		return nil, err
	}
	m, _ := v.(map[string]any)
	return m, nil
}

// CanonicalReference returns a copy of ref whose metadata is in its JSON
// form. It fails when the metadata cannot be marshalled.
func CanonicalReference(ref MediaReference) (MediaReference, error) {
	var err error
	switch r := ref.(type) {
	case *ExternalReference:
		c := *r
		c.Metadata, err = CanonicalMetadata(r.Metadata)
		return &c, err
	case *ImageSequenceReference:
		c := *r
		c.Metadata, err = CanonicalMetadata(r.Metadata)
		return &c, err
	case *MissingReference:
		c := *r
		c.Metadata, err = CanonicalMetadata(r.Metadata)
		return &c, err
	}
	return ref, nil
}

// SchemaName implements MediaReference.
func (r *ExternalReference) SchemaName() string { return ExternalReferenceSchema }

// TargetURL implements URLTargeter.
func (r *ExternalReference) TargetURL() string { return r.Target }

func (r *ExternalReference) String() string {
	return fmt.Sprintf("ExternalReference(%q)", r.Target)
}

// Encode implements MediaReference.
func (r *ExternalReference) Encode() map[string]any {
	m := map[string]any{
		SchemaKey:    ExternalReferenceSchema,
		"target_url": r.Target,
	}
	encodeCommon(m, r.Name, r.AvailableRange, r.Metadata)
	return m
}

// ImageSequenceReference points at a numbered frame sequence.
type ImageSequenceReference struct {
	TargetURLBase    string
	NamePrefix       string
	NameSuffix       string
	StartFrame       int
	FrameStep        int
	Rate             float64
	FrameZeroPadding int
	Name             string
	AvailableRange   *TimeRange
	Metadata         map[string]any
}

// SchemaName implements MediaReference.
func (r *ImageSequenceReference) SchemaName() string { return ImageSequenceReferenceSchema }

// TargetURL resolves to the first frame of the sequence.
func (r *ImageSequenceReference) TargetURL() string {
	return r.FrameURL(r.StartFrame)
}

// FrameURL resolves the URL of a single frame.
func (r *ImageSequenceReference) FrameURL(frame int) string {
	return fmt.Sprintf("%s%s%0*d%s", r.TargetURLBase, r.NamePrefix, r.FrameZeroPadding, frame, r.NameSuffix)
}

// Encode implements MediaReference.
func (r *ImageSequenceReference) Encode() map[string]any {
	m := map[string]any{
		SchemaKey:            ImageSequenceReferenceSchema,
		"target_url_base":    r.TargetURLBase,
		"name_prefix":        r.NamePrefix,
		"name_suffix":        r.NameSuffix,
		"start_frame":        r.StartFrame,
		"frame_step":         r.FrameStep,
		"rate":               r.Rate,
		"frame_zero_padding": r.FrameZeroPadding,
	}
	encodeCommon(m, r.Name, r.AvailableRange, r.Metadata)
	return m
}

// MissingReference stands in for media that could not be located.
type MissingReference struct {
	Name           string
	AvailableRange *TimeRange
	Metadata       map[string]any
}

// SchemaName implements MediaReference.
func (r *MissingReference) SchemaName() string { return MissingReferenceSchema }

// Encode implements MediaReference.
func (r *MissingReference) Encode() map[string]any {
	m := map[string]any{SchemaKey: MissingReferenceSchema}
	encodeCommon(m, r.Name, r.AvailableRange, r.Metadata)
	return m
}

func encodeCommon(m map[string]any, name string, available *TimeRange, metadata map[string]any) {
	if name != "" {
		m["name"] = name
	}
	if available != nil {
		m["available_range"] = available.Encode()
	}
	if len(metadata) > 0 {
		m["metadata"] = fields.Normalize(metadata)
	}
}

type common struct {
	name      string
	available *TimeRange
	metadata  map[string]any
}

func decodeCommon(m map[string]any) (common, error) {
	var c common
	name, err := fields.OptString(m, "name")
	if err != nil {
		return c, err
	}
	if name != nil {
		c.name = *name
	}
	ro, _, err := fields.OptObject(m, "available_range")
	if err != nil {
		return c, err
	}
	if ro != nil {
		tr, err := DecodeTimeRange(ro)
		if err != nil {
			return c, fields.Nest("available_range", err)
		}
		c.available = &tr
	}
	mo, _, err := fields.OptObject(m, "metadata")
	if err != nil {
		return c, err
	}
	if len(mo) > 0 {
		c.metadata, _ = fields.Normalize(mo).(map[string]any)
	}
	return c, nil
}

// DecodeMediaReference reads a reference from a nested record object.
// Objects without a schema label but with a target_url are read as
// external references.
func DecodeMediaReference(m map[string]any) (MediaReference, error) {
	label, err := fields.OptString(m, SchemaKey)
	if err != nil {
		return nil, err
	}
	schema := ""
	if label != nil {
		schema, _, _ = strings.Cut(*label, ".")
	} else if fields.Has(m, "target_url") {
		schema = "ExternalReference"
	}

	c, err := decodeCommon(m)
	if err != nil {
		return nil, err
	}

	switch schema {
	case "ExternalReference":
		target, err := fields.String(m, "target_url")
		if err != nil {
			return nil, err
		}
		return &ExternalReference{Target: target, Name: c.name, AvailableRange: c.available, Metadata: c.metadata}, nil
	case "ImageSequenceReference":
		return decodeImageSequence(m, c)
	case "MissingReference":
		return &MissingReference{Name: c.name, AvailableRange: c.available, Metadata: c.metadata}, nil
	case "":
		return nil, &fields.Error{Field: SchemaKey, Reason: "is required", Missing: true}
	default:
		return nil, &fields.Error{Field: SchemaKey, Reason: fmt.Sprintf("unsupported media reference schema %q", *label)}
	}
}

func decodeImageSequence(m map[string]any, c common) (*ImageSequenceReference, error) {
	base, err := fields.String(m, "target_url_base")
	if err != nil {
		return nil, err
	}
	r := &ImageSequenceReference{TargetURLBase: base, Name: c.name, AvailableRange: c.available, Metadata: c.metadata}
	if p, err := fields.OptString(m, "name_prefix"); err != nil {
		return nil, err
	} else if p != nil {
		r.NamePrefix = *p
	}
	if s, err := fields.OptString(m, "name_suffix"); err != nil {
		return nil, err
	} else if s != nil {
		r.NameSuffix = *s
	}
	if r.StartFrame, err = fields.IntOr(m, "start_frame", 1); err != nil {
		return nil, err
	}
	if r.FrameStep, err = fields.IntOr(m, "frame_step", 1); err != nil {
		return nil, err
	}
	if r.FrameZeroPadding, err = fields.IntOr(m, "frame_zero_padding", 0); err != nil {
		return nil, err
	}
	if fields.Has(m, "rate") {
		if r.Rate, err = fields.Float(m, "rate"); err != nil {
			return nil, err
		}
	}
	return r, nil
}
