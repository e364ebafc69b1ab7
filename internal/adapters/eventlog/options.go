package eventlog

import (
	"os"

	"github.com/okian/syncevents/pkg/logger"
)

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithSync controls whether every append is fsynced before returning.
// Enabled by default.
func WithSync(enabled bool) Option {
	return func(w *Writer) {
		w.sync = enabled
	}
}

// WithFileMode sets the permissions of newly created log files.
func WithFileMode(mode os.FileMode) Option {
	return func(w *Writer) {
		if mode != 0 {
			w.mode = mode
		}
	}
}

// WithLogger sets the logger of the Writer.
func WithLogger(l logger.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.log = l
		}
	}
}
