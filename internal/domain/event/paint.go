package event

import (
	"fmt"
	"strings"

	"github.com/okian/syncevents/internal/domain/fields"
	"github.com/okian/syncevents/internal/domain/otio"
)

// PaintVertexSchema labels an encoded PaintVertex.
const PaintVertexSchema = "PaintVertex.1"

// Paint defaults applied when the caller leaves a field empty.
const (
	DefaultPaintType  = "color"
	DefaultPaintBrush = "circle"
)

// PaintVertex is one sample of an annotation stroke.
type PaintVertex struct {
	X    float64
	Y    float64
	Size float64
}

// NewPaintVertex returns a vertex, rejecting non-finite components.
func NewPaintVertex(x, y, size float64) (PaintVertex, error) {
	v := PaintVertex{X: x, Y: y, Size: size}
	if !v.IsValid() {
		return PaintVertex{}, &ValidationError{Field: "point", Reason: fmt.Sprintf("components must be finite, got %s", v)}
	}
	return v, nil
}

// IsValid reports whether every component is finite.
func (v PaintVertex) IsValid() bool { return fields.Finite(v.X, v.Y, v.Size) }

func (v PaintVertex) String() string {
	return fmt.Sprintf("PaintVertex(%g, %g, %g)", v.X, v.Y, v.Size)
}

// Encode renders the vertex as a nested record object.
func (v PaintVertex) Encode() map[string]any {
	return map[string]any{otio.SchemaKey: PaintVertexSchema, "x": v.X, "y": v.Y, "size": v.Size}
}

// DecodePaintVertex reads a vertex from a nested record object.
func DecodePaintVertex(m map[string]any) (PaintVertex, error) {
	var v PaintVertex
	var err error
	if v.X, err = fields.Float(m, "x"); err != nil {
		return PaintVertex{}, err
	}
	if v.Y, err = fields.Float(m, "y"); err != nil {
		return PaintVertex{}, err
	}
	if v.Size, err = fields.Float(m, "size"); err != nil {
		return PaintVertex{}, err
	}
	return v, nil
}

// PaintStartParams holds the fields of a PaintStart.
type PaintStartParams struct {
	SourceIndex     int
	UUID            string
	FriendlyName    *string
	ParticipantHash *string
	// RGBA must hold exactly four components.
	RGBA []float64
	// Type and Brush fall back to DefaultPaintType and DefaultPaintBrush.
	Type  string
	Brush string
	// Visible defaults to true.
	Visible     *bool
	Name        *string
	EffectName  *string
	LayerRange  *otio.TimeRange
	Hold        *bool
	Ghost       *bool
	GhostBefore *bool
	GhostAfter  *bool
}

// PaintStart opens an annotation stroke.
type PaintStart struct {
	header
	sourceIndex     int
	uuid            string
	friendlyName    *string
	participantHash *string
	rgba            [4]float64
	typ             string
	brush           string
	visible         bool
	name            *string
	effectName      *string
	layerRange      *otio.TimeRange
	hold            *bool
	ghost           *bool
	ghostBefore     *bool
	ghostAfter      *bool
}

// NewPaintStart validates p and builds the event.
func NewPaintStart(p PaintStartParams, opts ...Option) (PaintStart, error) {
	if len(p.RGBA) != 4 {
		return PaintStart{}, invalid(KindPaintStart, "rgba", "must have exactly 4 components, got %d", len(p.RGBA))
	}
	e := PaintStart{
		header:          newHeader(opts),
		sourceIndex:     p.SourceIndex,
		uuid:            p.UUID,
		friendlyName:    clonePtr(p.FriendlyName),
		participantHash: clonePtr(p.ParticipantHash),
		typ:             p.Type,
		brush:           p.Brush,
		visible:         true,
		name:            clonePtr(p.Name),
		effectName:      clonePtr(p.EffectName),
		layerRange:      clonePtr(p.LayerRange),
		hold:            clonePtr(p.Hold),
		ghost:           clonePtr(p.Ghost),
		ghostBefore:     clonePtr(p.GhostBefore),
		ghostAfter:      clonePtr(p.GhostAfter),
	}
	copy(e.rgba[:], p.RGBA)
	if e.typ == "" {
		e.typ = DefaultPaintType
	}
	if e.brush == "" {
		e.brush = DefaultPaintBrush
	}
	if p.Visible != nil {
		e.visible = *p.Visible
	}
	if err := e.Validate(); err != nil {
		return PaintStart{}, err
	}
	return e, nil
}

func (PaintStart) Kind() Kind         { return KindPaintStart }
func (PaintStart) SchemaVersion() int { return 1 }

// UUID returns the stroke id.
func (e PaintStart) UUID() string { return e.uuid }

// SourceIndex returns the source the stroke is drawn on.
func (e PaintStart) SourceIndex() int { return e.sourceIndex }

// RGBA returns the stroke color.
func (e PaintStart) RGBA() [4]float64 { return e.rgba }

// Type returns the paint type, "color" unless set.
func (e PaintStart) Type() string { return e.typ }

// Brush returns the brush name, "circle" unless set.
func (e PaintStart) Brush() string { return e.brush }

// Visible reports whether the stroke is shown.
func (e PaintStart) Visible() bool { return e.visible }

// Params returns a copy of the event fields.
func (e PaintStart) Params() PaintStartParams {
	return PaintStartParams{
		SourceIndex:     e.sourceIndex,
		UUID:            e.uuid,
		FriendlyName:    clonePtr(e.friendlyName),
		ParticipantHash: clonePtr(e.participantHash),
		RGBA:            append([]float64(nil), e.rgba[:]...),
		Type:            e.typ,
		Brush:           e.brush,
		Visible:         Ptr(e.visible),
		Name:            clonePtr(e.name),
		EffectName:      clonePtr(e.effectName),
		LayerRange:      clonePtr(e.layerRange),
		Hold:            clonePtr(e.hold),
		Ghost:           clonePtr(e.ghost),
		GhostBefore:     clonePtr(e.ghostBefore),
		GhostAfter:      clonePtr(e.ghostAfter),
	}
}

// Validate implements Event.
func (e PaintStart) Validate() error {
	if e.uuid == "" {
		return invalid(KindPaintStart, "uuid", "must not be empty")
	}
	if e.sourceIndex < 0 {
		return invalid(KindPaintStart, "source_index", "must be >= 0, got %d", e.sourceIndex)
	}
	if !fields.Finite(e.rgba[:]...) {
		return invalid(KindPaintStart, "rgba", "components must be finite")
	}
	if e.layerRange != nil && !e.layerRange.IsValid() {
		return invalid(KindPaintStart, "layer_range", "invalid range %s", *e.layerRange)
	}
	return nil
}

// Payload implements Event.
func (e PaintStart) Payload() Record {
	r := Record{
		"source_index": e.sourceIndex,
		"uuid":         e.uuid,
		"rgba":         []any{e.rgba[0], e.rgba[1], e.rgba[2], e.rgba[3]},
		"type":         e.typ,
		"brush":        e.brush,
		"visible":      e.visible,
	}
	putString(r, "friendly_name", e.friendlyName)
	putString(r, "participant_hash", e.participantHash)
	putString(r, "name", e.name)
	putString(r, "effect_name", e.effectName)
	if e.layerRange != nil {
		r["layer_range"] = e.layerRange.Encode()
	}
	putBool(r, "hold", e.hold)
	putBool(r, "ghost", e.ghost)
	putBool(r, "ghost_before", e.ghostBefore)
	putBool(r, "ghost_after", e.ghostAfter)
	return r
}

func (e PaintStart) String() string {
	return fmt.Sprintf("PaintStart(uuid=%q, source_index=%d, rgba=%v, type=%s, brush=%s, visible=%t)",
		e.uuid, e.sourceIndex, e.rgba, e.typ, e.brush, e.visible)
}

// PaintPoint adds one vertex to an open stroke.
type PaintPoint struct {
	header
	sourceIndex int
	uuid        string
	layerRange  *otio.TimeRange
	point       PaintVertex
}

// NewPaintPoint builds a stroke sample.
func NewPaintPoint(sourceIndex int, uuid string, point PaintVertex, layerRange *otio.TimeRange, opts ...Option) (PaintPoint, error) {
	e := PaintPoint{
		header:      newHeader(opts),
		sourceIndex: sourceIndex,
		uuid:        uuid,
		layerRange:  clonePtr(layerRange),
		point:       point,
	}
	if err := e.Validate(); err != nil {
		return PaintPoint{}, err
	}
	return e, nil
}

func (PaintPoint) Kind() Kind         { return KindPaintPoint }
func (PaintPoint) SchemaVersion() int { return 1 }

// UUID returns the stroke id.
func (e PaintPoint) UUID() string { return e.uuid }

// SourceIndex returns the source the stroke is drawn on.
func (e PaintPoint) SourceIndex() int { return e.sourceIndex }

// Point returns the sampled vertex.
func (e PaintPoint) Point() PaintVertex { return e.point }

// LayerRange returns the frames the stroke is visible on, if limited.
func (e PaintPoint) LayerRange() (otio.TimeRange, bool) {
	if e.layerRange == nil {
		return otio.TimeRange{}, false
	}
	return *e.layerRange, true
}

// Validate implements Event.
func (e PaintPoint) Validate() error {
	if e.uuid == "" {
		return invalid(KindPaintPoint, "uuid", "must not be empty")
	}
	if e.sourceIndex < 0 {
		return invalid(KindPaintPoint, "source_index", "must be >= 0, got %d", e.sourceIndex)
	}
	if !e.point.IsValid() {
		return invalid(KindPaintPoint, "point", "components must be finite, got %s", e.point)
	}
	if e.layerRange != nil && !e.layerRange.IsValid() {
		return invalid(KindPaintPoint, "layer_range", "invalid range %s", *e.layerRange)
	}
	return nil
}

// Payload implements Event.
func (e PaintPoint) Payload() Record {
	r := Record{
		"source_index": e.sourceIndex,
		"uuid":         e.uuid,
		"point":        e.point.Encode(),
	}
	if e.layerRange != nil {
		r["layer_range"] = e.layerRange.Encode()
	}
	return r
}

func (e PaintPoint) String() string {
	return fmt.Sprintf("PaintPoint(uuid=%q, point=%s)", e.uuid, e.point)
}

// PaintEnd closes a stroke. The closing position is either absent, a
// single vertex, or a list of trailing vertices.
type PaintEnd struct {
	header
	uuid   string
	point  *PaintVertex
	points []PaintVertex
}

// NewPaintEnd closes the stroke uuid without a final position.
func NewPaintEnd(uuid string, opts ...Option) (PaintEnd, error) {
	return newPaintEnd(uuid, nil, nil, opts)
}

// NewPaintEndAt closes the stroke uuid at a single vertex.
func NewPaintEndAt(uuid string, point PaintVertex, opts ...Option) (PaintEnd, error) {
	return newPaintEnd(uuid, &point, nil, opts)
}

// NewPaintEndWith closes the stroke uuid with trailing vertices.
func NewPaintEndWith(uuid string, points []PaintVertex, opts ...Option) (PaintEnd, error) {
	if points == nil {
		points = []PaintVertex{}
	}
	return newPaintEnd(uuid, nil, points, opts)
}

func newPaintEnd(uuid string, point *PaintVertex, points []PaintVertex, opts []Option) (PaintEnd, error) {
	e := PaintEnd{header: newHeader(opts), uuid: uuid, point: clonePtr(point)}
	if points != nil {
		e.points = append([]PaintVertex{}, points...)
	}
	if err := e.Validate(); err != nil {
		return PaintEnd{}, err
	}
	return e, nil
}

func (PaintEnd) Kind() Kind         { return KindPaintEnd }
func (PaintEnd) SchemaVersion() int { return 1 }

// UUID returns the stroke id.
func (e PaintEnd) UUID() string { return e.uuid }

// Point returns the single closing vertex, if one was recorded.
func (e PaintEnd) Point() (PaintVertex, bool) {
	if e.point == nil {
		return PaintVertex{}, false
	}
	return *e.point, true
}

// Points returns the closing vertices: the single vertex, the list, or nil.
func (e PaintEnd) Points() []PaintVertex {
	if e.point != nil {
		return []PaintVertex{*e.point}
	}
	if e.points == nil {
		return nil
	}
	return append([]PaintVertex{}, e.points...)
}

// Validate implements Event.
func (e PaintEnd) Validate() error {
	if e.uuid == "" {
		return invalid(KindPaintEnd, "uuid", "must not be empty")
	}
	if e.point != nil && e.points != nil {
		return invalid(KindPaintEnd, "point", "cannot be both a vertex and a list")
	}
	if e.point != nil && !e.point.IsValid() {
		return invalid(KindPaintEnd, "point", "components must be finite, got %s", *e.point)
	}
	for i, v := range e.points {
		if !v.IsValid() {
			return invalid(KindPaintEnd, fmt.Sprintf("point[%d]", i), "components must be finite, got %s", v)
		}
	}
	return nil
}

// Payload implements Event.
func (e PaintEnd) Payload() Record {
	r := Record{"uuid": e.uuid}
	switch {
	case e.point != nil:
		r["point"] = e.point.Encode()
	case e.points != nil:
		l := make([]any, len(e.points))
		for i, v := range e.points {
			l[i] = v.Encode()
		}
		r["point"] = l
	}
	return r
}

func (e PaintEnd) String() string {
	switch {
	case e.point != nil:
		return fmt.Sprintf("PaintEnd(uuid=%q, point=%s)", e.uuid, *e.point)
	case e.points != nil:
		parts := make([]string, len(e.points))
		for i, v := range e.points {
			parts[i] = v.String()
		}
		return fmt.Sprintf("PaintEnd(uuid=%q, point=[%s])", e.uuid, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("PaintEnd(uuid=%q)", e.uuid)
}
