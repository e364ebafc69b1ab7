package codec

import (
	"fmt"
	"time"

	"github.com/okian/syncevents/internal/domain/event"
)

// TimestampLayout is the persisted timestamp form: ISO-8601, UTC, with
// microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Timestamps without a zone are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return event.NormalizeTime(t).Format(TimestampLayout)
}

// ParseTimestamp reads RFC 3339 timestamps and zone-less ISO-8601 ones.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return event.NormalizeTime(t), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return event.NormalizeTime(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
