package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	fileNamePrefix = "otio_events_"
	fileNameLayout = "20060102_150405"
	fileNameExt    = ".jsonl"
)

// FileName returns the session log name for a session started at t, e.g.
// otio_events_20250623_125823.jsonl.
func FileName(t time.Time) string {
	return fileNamePrefix + t.Format(fileNameLayout) + fileNameExt
}

// ParseFileName recovers the session start time from a log name.
func ParseFileName(name string) (time.Time, bool) {
	base := filepath.Base(name)
	if !strings.HasPrefix(base, fileNamePrefix) || !strings.HasSuffix(base, fileNameExt) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(base, fileNamePrefix), fileNameExt)
	t, err := time.ParseInLocation(fileNameLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NewSessionPath creates dir if needed and returns the log path for a
// session started at t.
func NewSessionPath(dir string, t time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &IOError{Op: "mkdir", Path: dir, Err: err}
	}
	return filepath.Join(dir, FileName(t)), nil
}
