package registry

import (
	"errors"
	"fmt"

	"github.com/okian/syncevents/internal/domain/event"
)

// Sentinel errors for the registry.
var (
	ErrDuplicateRegistration = errors.New("schema already registered")
	ErrUnknownSchema         = errors.New("unknown schema")
	ErrFrozen                = errors.New("registry is frozen")
	ErrInvalidSchema         = errors.New("invalid schema")
)

// UnknownSchemaError reports a kind, version or label with no registered
// schema.
type UnknownSchemaError struct {
	Kind    event.Kind
	Version int
	Label   string
}

func (e *UnknownSchemaError) Error() string {
	switch {
	case e.Label != "":
		return fmt.Sprintf("unknown schema %q", e.Label)
	case e.Version == 0:
		return fmt.Sprintf("unknown schema kind %q", e.Kind)
	default:
		return fmt.Sprintf("unknown schema %s.%d", e.Kind, e.Version)
	}
}

// Is matches ErrUnknownSchema.
func (e *UnknownSchemaError) Is(target error) bool { return target == ErrUnknownSchema }
