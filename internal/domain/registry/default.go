package registry

import (
	"sync"

	"github.com/okian/syncevents/internal/domain/event"
)

// Schema tags written by the first generation of the review plugin.
var legacyAliases = map[string]Key{
	"play.1":              {Kind: event.KindPlay, Version: 1},
	"set_current_frame.1": {Kind: event.KindSetCurrentFrame, Version: 1},
}

var (
	defaultRegistry *Registry
	initOnce        sync.Once
)

// Builtin returns a frozen registry holding every built-in schema and the
// legacy aliases.
func Builtin() *Registry {
	r := New()
	r.MustRegister(event.Schemas()...)
	for label, key := range legacyAliases {
		if err := r.Alias(label, key.Kind, key.Version); err != nil {
			panic(err)
		}
	}
	r.Freeze()
	return r
}

// Init populates the process-wide registry. It must run before Default is
// used; repeated calls are no-ops.
func Init() {
	initOnce.Do(func() {
		defaultRegistry = Builtin()
	})
}

// Default returns the process-wide registry. It panics if Init was not called.
func Default() *Registry {
	if defaultRegistry == nil {
		panic("registry not initialized")
	}
	return defaultRegistry
}
