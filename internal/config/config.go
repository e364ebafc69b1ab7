// Package config defines recorder configuration and its loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the diagnostic log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// LogDir is the directory that receives session event logs.
	LogDir string `koanf:"log_dir"`

	// QueueSize bounds the in-memory queue between event sources and the
	// log writer.
	QueueSize int `koanf:"queue_size"`

	// SyncWrites fsyncs the log after every append.
	SyncWrites bool `koanf:"sync_writes"`

	// CanonicalJSON writes RFC 8785 canonical lines.
	CanonicalJSON bool `koanf:"canonical_json"`

	// LegacyAliases accepts records tagged only with an OTIO_SCHEMA label.
	LegacyAliases bool `koanf:"legacy_aliases"`

	// DedupeMedia drops a MediaChange whose target repeats the previous one.
	DedupeMedia bool `koanf:"dedupe_media"`

	// PathTokenIndices picks the project, sequence, shot and task segments
	// out of a slash-split media path.
	PathTokenIndices []int `koanf:"path_token_indices"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		LogDir:           defaultLogDir(),
		QueueSize:        4096,
		SyncWrites:       true,
		CanonicalJSON:    false,
		LegacyAliases:    true,
		DedupeMedia:      true,
		PathTokenIndices: []int{2, 3, 4, 5},
	}
}

func defaultLogDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "syncevents")
	}
	return filepath.Join(os.TempDir(), "syncevents")
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if strings.TrimSpace(c.LogDir) == "" {
		return fmt.Errorf("%w: log_dir must not be empty", ErrInvalidConfig)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	}
	if len(c.PathTokenIndices) != 4 {
		return fmt.Errorf("%w: path_token_indices needs 4 entries, got %d", ErrInvalidConfig, len(c.PathTokenIndices))
	}
	for _, i := range c.PathTokenIndices {
		if i < 0 {
			return fmt.Errorf("%w: path_token_indices must not be negative", ErrInvalidConfig)
		}
	}
	return nil
}
