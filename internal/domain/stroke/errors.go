package stroke

import (
	"errors"
	"fmt"

	"github.com/okian/syncevents/internal/domain/event"
)

// Sentinel kinds for stroke assembly errors.
var (
	ErrOrphanPoint    = errors.New("paint event without a PaintStart")
	ErrDuplicateStart = errors.New("PaintStart for an open stroke")
	ErrStrokeClosed   = errors.New("paint event after PaintEnd")
)

// SequenceError reports a paint event that does not fit the stroke it names.
type SequenceError struct {
	UUID string
	Kind event.Kind
	Err  error
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("stroke %s: %s: %v", e.UUID, e.Kind, e.Err)
}

func (e *SequenceError) Unwrap() error { return e.Err }
