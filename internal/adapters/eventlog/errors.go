package eventlog

import (
	"errors"
	"fmt"
)

// Sentinel kinds for event log errors.
var (
	ErrNotOpen     = errors.New("event log not open")
	ErrAlreadyOpen = errors.New("event log already open")
	ErrIO          = errors.New("event log i/o failed")
)

// IOError reports a resource-level failure. It is fatal to the operation
// that returned it; the core never retries.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("eventlog %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("eventlog %s %s: %v", e.Op, e.Path, e.Err)
}

// Is matches ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

func (e *IOError) Unwrap() error { return e.Err }

// LineError reports a line that could not be decoded. Reading may continue
// with the next line.
type LineError struct {
	Line   int
	Offset int64
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d (offset %d): %v", e.Line, e.Offset, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
