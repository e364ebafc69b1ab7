package event

import (
	"errors"
	"fmt"

	"github.com/okian/syncevents/internal/domain/fields"
)

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrValidation      = errors.New("validation failed")
	ErrMalformedRecord = errors.New("malformed record")
)

// ValidationError reports a field value that breaks a variant invariant.
type ValidationError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s.%s: %s", e.Kind, e.Field, e.Reason)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// MalformedRecordError reports a record that is structurally broken:
// a missing required field, a non-object line, a bad envelope.
type MalformedRecordError struct {
	Kind   Kind
	Field  string
	Reason string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	msg := "malformed record"
	if e.Kind != "" {
		msg += " " + string(e.Kind)
	}
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += " " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

func (e *MalformedRecordError) Unwrap() error { return e.Err }

func invalid(kind Kind, field, format string, args ...any) error {
	return &ValidationError{Kind: kind, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// fieldError maps an accessor failure onto the error taxonomy: absent
// required fields make the record malformed, values of the wrong shape fail
// validation.
func fieldError(kind Kind, err error) error {
	var fe *fields.Error
	if !errors.As(err, &fe) {
		return err
	}
	if fe.Missing {
		return &MalformedRecordError{Kind: kind, Field: fe.Field, Reason: fe.Reason}
	}
	return &ValidationError{Kind: kind, Field: fe.Field, Reason: fe.Reason}
}
