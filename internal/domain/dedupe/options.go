package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxKeys sets the maximum number of keys to keep in memory.
// If maxKeys > 0: bounded mode, evicting the least recently touched key.
// If maxKeys <= 0: unbounded mode.
func WithMaxKeys(maxKeys int) Option {
	return func(d *inMemoryDeduper) {
		d.maxKeys = maxKeys
	}
}
