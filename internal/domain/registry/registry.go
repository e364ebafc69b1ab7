// Package registry maps (kind, schema version) pairs to the rules that
// encode and decode them. It is the single place that decides which event
// kinds a process recognizes.
package registry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/okian/syncevents/internal/domain/event"
)

// Key identifies one version of one event kind.
type Key struct {
	Kind    event.Kind
	Version int
}

func (k Key) String() string {
	return fmt.Sprintf("%s.%d", k.Kind, k.Version)
}

// Registry holds the known schemas. Registration happens during start-up;
// after Freeze the registry is read-only and safe for concurrent lookups.
type Registry struct {
	mu      sync.RWMutex
	schemas map[Key]event.Schema
	latest  map[event.Kind]int
	aliases map[string]Key
	frozen  bool
}

// New returns an empty, unfrozen registry.
func New() *Registry {
	return &Registry{
		schemas: make(map[Key]event.Schema),
		latest:  make(map[event.Kind]int),
		aliases: make(map[string]Key),
	}
}

// Register adds s. Registering the same (kind, version) twice fails with
// ErrDuplicateRegistration.
func (r *Registry) Register(s event.Schema) error {
	if s.Kind == "" || s.Version < 1 || s.Decode == nil {
		return fmt.Errorf("%w: %s needs a kind, a version >= 1 and a decoder", ErrInvalidSchema, s.Label())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("register %s: %w", s.Label(), ErrFrozen)
	}
	key := Key{Kind: s.Kind, Version: s.Version}
	if _, exists := r.schemas[key]; exists {
		return fmt.Errorf("schema %s: %w", key, ErrDuplicateRegistration)
	}
	r.schemas[key] = s
	if s.Version > r.latest[s.Kind] {
		r.latest[s.Kind] = s.Version
	}
	return nil
}

// MustRegister is Register for start-up code; it panics on error.
func (r *Registry) MustRegister(schemas ...event.Schema) {
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Alias makes label resolve to an already registered (kind, version).
// Labels are the schema tags older records carry, such as "play.1".
func (r *Registry) Alias(label string, kind event.Kind, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("alias %s: %w", label, ErrFrozen)
	}
	key := Key{Kind: kind, Version: version}
	if _, ok := r.schemas[key]; !ok {
		return &UnknownSchemaError{Kind: kind, Version: version}
	}
	if prev, exists := r.aliases[label]; exists && prev != key {
		return fmt.Errorf("alias %s already maps to %s: %w", label, prev, ErrDuplicateRegistration)
	}
	r.aliases[label] = key
	return nil
}

// Freeze ends the registration phase.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Lookup returns the schema registered for (kind, version).
func (r *Registry) Lookup(kind event.Kind, version int) (event.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[Key{Kind: kind, Version: version}]
	if !ok {
		return event.Schema{}, &UnknownSchemaError{Kind: kind, Version: version}
	}
	return s, nil
}

// Latest returns the highest registered version of kind.
func (r *Registry) Latest(kind event.Kind) (event.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.latest[kind]
	if !ok {
		return event.Schema{}, &UnknownSchemaError{Kind: kind}
	}
	return r.schemas[Key{Kind: kind, Version: v}], nil
}

// Resolve finds the schema for a "Kind.Version" label, consulting aliases
// first.
func (r *Registry) Resolve(label string) (event.Schema, error) {
	r.mu.RLock()
	key, ok := r.aliases[label]
	r.mu.RUnlock()
	if ok {
		return r.Lookup(key.Kind, key.Version)
	}

	name, ver, found := strings.Cut(label, ".")
	if !found {
		return event.Schema{}, &UnknownSchemaError{Label: label}
	}
	v, err := strconv.Atoi(ver)
	if err != nil || v < 1 {
		return event.Schema{}, &UnknownSchemaError{Label: label}
	}
	s, err := r.Lookup(event.Kind(name), v)
	if err != nil {
		return event.Schema{}, &UnknownSchemaError{Label: label}
	}
	return s, nil
}

// Keys lists every registered (kind, version), sorted.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	keys := make([]Key, 0, len(r.schemas))
	for k := range r.schemas {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].Version < keys[j].Version
	})
	return keys
}

// Aliases returns a copy of the alias table.
func (r *Registry) Aliases() map[string]Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Key, len(r.aliases))
	for l, k := range r.aliases {
		out[l] = k
	}
	return out
}
