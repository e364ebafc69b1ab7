// Package otio contains the timeline value types carried inside session
// events: rational time, time ranges, 2D bounds and media references.
//
// The types follow the OpenTimelineIO JSON layout so that a record stays
// readable by OTIO tooling. Each value encodes to a nested object tagged with
// an OTIO_SCHEMA label and decodes back strictly.
package otio

import (
	"fmt"
	"math"

	"github.com/okian/syncevents/internal/domain/fields"
)

// SchemaKey is the member that tags nested OTIO objects.
const SchemaKey = "OTIO_SCHEMA"

// OTIO schema labels for value types.
const (
	rationalTimeLabel = "RationalTime.1"
	timeRangeLabel    = "TimeRange.1"
	vec2Label         = "V2d.1"
	box2DLabel        = "Box2d.1"
)

// RationalTime is a point in time expressed as value/rate.
type RationalTime struct {
	Value float64
	Rate  float64
}

// NewRationalTime returns value at the given rate.
func NewRationalTime(value, rate float64) RationalTime {
	return RationalTime{Value: value, Rate: rate}
}

// IsValid reports whether the time has a finite value and a positive rate.
func (t RationalTime) IsValid() bool {
	return fields.Finite(t.Value, t.Rate) && t.Rate > 0
}

// Seconds converts the time to seconds. Invalid times yield NaN.
func (t RationalTime) Seconds() float64 {
	if !t.IsValid() {
		return math.NaN()
	}
	return t.Value / t.Rate
}

func (t RationalTime) String() string {
	return fmt.Sprintf("RationalTime(%g, %g)", t.Value, t.Rate)
}

// Encode renders the time as a nested record object.
func (t RationalTime) Encode() map[string]any {
	return map[string]any{
		SchemaKey: rationalTimeLabel,
		"value":   t.Value,
		"rate":    t.Rate,
	}
}

// DecodeRationalTime reads a time from a nested record object.
func DecodeRationalTime(m map[string]any) (RationalTime, error) {
	value, err := fields.Float(m, "value")
	if err != nil {
		return RationalTime{}, err
	}
	rate, err := fields.Float(m, "rate")
	if err != nil {
		return RationalTime{}, err
	}
	return RationalTime{Value: value, Rate: rate}, nil
}

// TimeRange is a start time and a duration.
type TimeRange struct {
	StartTime RationalTime
	Duration  RationalTime
}

// NewTimeRange builds a range from its start and duration.
func NewTimeRange(start, duration RationalTime) TimeRange {
	return TimeRange{StartTime: start, Duration: duration}
}

// IsValid reports whether both times are valid and the duration is not negative.
func (r TimeRange) IsValid() bool {
	return r.StartTime.IsValid() && r.Duration.IsValid() && r.Duration.Value >= 0
}

// EndTimeExclusive returns the first time after the range, in the start rate.
func (r TimeRange) EndTimeExclusive() RationalTime {
	if r.Duration.Rate == r.StartTime.Rate {
		return RationalTime{Value: r.StartTime.Value + r.Duration.Value, Rate: r.StartTime.Rate}
	}
	return RationalTime{Value: r.StartTime.Value + r.Duration.Seconds()*r.StartTime.Rate, Rate: r.StartTime.Rate}
}

func (r TimeRange) String() string {
	return fmt.Sprintf("TimeRange(%s, %s)", r.StartTime, r.Duration)
}

// Encode renders the range as a nested record object.
func (r TimeRange) Encode() map[string]any {
	return map[string]any{
		SchemaKey:    timeRangeLabel,
		"start_time": r.StartTime.Encode(),
		"duration":   r.Duration.Encode(),
	}
}

// DecodeTimeRange reads a range from a nested record object.
func DecodeTimeRange(m map[string]any) (TimeRange, error) {
	so, err := fields.Object(m, "start_time")
	if err != nil {
		return TimeRange{}, err
	}
	start, err := DecodeRationalTime(so)
	if err != nil {
		return TimeRange{}, fields.Nest("start_time", err)
	}
	do, err := fields.Object(m, "duration")
	if err != nil {
		return TimeRange{}, err
	}
	duration, err := DecodeRationalTime(do)
	if err != nil {
		return TimeRange{}, fields.Nest("duration", err)
	}
	return TimeRange{StartTime: start, Duration: duration}, nil
}

// Vec2 is a 2D point.
type Vec2 struct {
	X float64
	Y float64
}

// Encode renders the point as a nested record object.
func (v Vec2) Encode() map[string]any {
	return map[string]any{SchemaKey: vec2Label, "x": v.X, "y": v.Y}
}

// DecodeVec2 reads a point from a nested record object.
func DecodeVec2(m map[string]any) (Vec2, error) {
	x, err := fields.Float(m, "x")
	if err != nil {
		return Vec2{}, err
	}
	y, err := fields.Float(m, "y")
	if err != nil {
		return Vec2{}, err
	}
	return Vec2{X: x, Y: y}, nil
}

// Box2D is an axis-aligned rectangle.
type Box2D struct {
	Min Vec2
	Max Vec2
}

// IsValid reports whether all corners are finite.
func (b Box2D) IsValid() bool {
	return fields.Finite(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
}

func (b Box2D) String() string {
	return fmt.Sprintf("Box2D((%g, %g), (%g, %g))", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
}

// Encode renders the box as a nested record object.
func (b Box2D) Encode() map[string]any {
	return map[string]any{
		SchemaKey: box2DLabel,
		"min":     b.Min.Encode(),
		"max":     b.Max.Encode(),
	}
}

// DecodeBox2D reads a box from a nested record object.
func DecodeBox2D(m map[string]any) (Box2D, error) {
	mo, err := fields.Object(m, "min")
	if err != nil {
		return Box2D{}, err
	}
	lo, err := DecodeVec2(mo)
	if err != nil {
		return Box2D{}, fields.Nest("min", err)
	}
	xo, err := fields.Object(m, "max")
	if err != nil {
		return Box2D{}, err
	}
	hi, err := DecodeVec2(xo)
	if err != nil {
		return Box2D{}, fields.Nest("max", err)
	}
	return Box2D{Min: lo, Max: hi}, nil
}
