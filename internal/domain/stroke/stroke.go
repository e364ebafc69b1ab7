// Package stroke rebuilds annotation strokes from a stream of paint events.
//
// A stroke is the PaintStart, PaintPoint..., PaintEnd sequence sharing one
// uuid. Events for different strokes may interleave.
package stroke

import (
	"sync"

	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/pkg/metrics"
)

// Stroke is one annotation drawing action.
type Stroke struct {
	UUID   string
	Start  event.PaintStart
	Points []event.PaintPoint
	End    *event.PaintEnd
}

// Complete reports whether the stroke has been closed.
func (s Stroke) Complete() bool { return s.End != nil }

// Events returns the stroke's events in the order they were added.
func (s Stroke) Events() []event.Event {
	out := make([]event.Event, 0, len(s.Points)+2)
	out = append(out, s.Start)
	for _, p := range s.Points {
		out = append(out, p)
	}
	if s.End != nil {
		out = append(out, *s.End)
	}
	return out
}

// Vertices returns the drawn path: every PaintPoint followed by the closing
// vertices of the PaintEnd.
func (s Stroke) Vertices() []event.PaintVertex {
	out := make([]event.PaintVertex, 0, len(s.Points))
	for _, p := range s.Points {
		out = append(out, p.Point())
	}
	if s.End != nil {
		out = append(out, s.End.Points()...)
	}
	return out
}

// Assembler groups paint events by uuid. It is safe for concurrent use.
type Assembler struct {
	mu      sync.Mutex
	strokes map[string]*Stroke
	order   []string
	errs    []error
}

// NewAssembler returns an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{strokes: make(map[string]*Stroke)}
}

// Add feeds one event. Non-paint events are ignored. A paint event that
// does not fit its stroke is returned as a *SequenceError and also kept for
// Errors; assembly continues.
func (a *Assembler) Add(e event.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	switch p := e.(type) {
	case event.PaintStart:
		err = a.start(p)
	case event.PaintPoint:
		err = a.point(p)
	case event.PaintEnd:
		err = a.end(p)
	default:
		return nil
	}
	if err != nil {
		a.errs = append(a.errs, err)
	}
	return err
}

func (a *Assembler) start(p event.PaintStart) error {
	if s, ok := a.strokes[p.UUID()]; ok && !s.Complete() {
		return &SequenceError{UUID: p.UUID(), Kind: p.Kind(), Err: ErrDuplicateStart}
	}
	// A closed uuid may be reused; the new stroke replaces the old one at
	// the end of the order.
	if _, ok := a.strokes[p.UUID()]; ok {
		a.dropFromOrder(p.UUID())
	}
	a.strokes[p.UUID()] = &Stroke{UUID: p.UUID(), Start: p}
	a.order = append(a.order, p.UUID())
	return nil
}

func (a *Assembler) point(p event.PaintPoint) error {
	s, err := a.open(p.UUID(), p.Kind())
	if err != nil {
		return err
	}
	s.Points = append(s.Points, p)
	return nil
}

func (a *Assembler) end(p event.PaintEnd) error {
	s, err := a.open(p.UUID(), p.Kind())
	if err != nil {
		return err
	}
	s.End = &p
	metrics.RecordStrokeCompleted()
	return nil
}

func (a *Assembler) open(uuid string, kind event.Kind) (*Stroke, error) {
	s, ok := a.strokes[uuid]
	if !ok {
		return nil, &SequenceError{UUID: uuid, Kind: kind, Err: ErrOrphanPoint}
	}
	if s.Complete() {
		return nil, &SequenceError{UUID: uuid, Kind: kind, Err: ErrStrokeClosed}
	}
	return s, nil
}

func (a *Assembler) dropFromOrder(uuid string) {
	for i, id := range a.order {
		if id == uuid {
			a.order = append(a.order[:i], a.order[i+1:]...)
			return
		}
	}
}

// Strokes returns every stroke in the order its PaintStart arrived.
func (a *Assembler) Strokes() []Stroke {
	return a.collect(func(*Stroke) bool { return true })
}

// Complete returns the strokes that have been closed.
func (a *Assembler) Complete() []Stroke {
	return a.collect(func(s *Stroke) bool { return s.Complete() })
}

// Open returns the strokes still waiting for a PaintEnd.
func (a *Assembler) Open() []Stroke {
	return a.collect(func(s *Stroke) bool { return !s.Complete() })
}

// Lookup returns the stroke with the given uuid.
func (a *Assembler) Lookup(uuid string) (Stroke, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.strokes[uuid]
	if !ok {
		return Stroke{}, false
	}
	return clone(s), true
}

// Errors returns the sequence errors seen so far.
func (a *Assembler) Errors() []error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]error(nil), a.errs...)
}

func (a *Assembler) collect(keep func(*Stroke) bool) []Stroke {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []Stroke
	for _, id := range a.order {
		if s := a.strokes[id]; keep(s) {
			out = append(out, clone(s))
		}
	}
	return out
}

func clone(s *Stroke) Stroke {
	c := *s
	c.Points = append([]event.PaintPoint(nil), s.Points...)
	if s.End != nil {
		end := *s.End
		c.End = &end
	}
	return c
}
