package testevents

import (
	"context"
	"fmt"

	"github.com/okian/syncevents/internal/adapters/eventlog"
	"github.com/okian/syncevents/internal/domain/codec"
	"github.com/okian/syncevents/internal/domain/event"
)

// Verify reads the log at path and checks that it holds want in order.
// A MediaChange in want may be missing from the log, since the recorder
// drops repeated media.
func Verify(ctx context.Context, path string, c *codec.Codec, want []event.Event, stats *Stats) error {
	entries, lineErrs, err := eventlog.ReadFile(ctx, path, c)
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	if len(lineErrs) > 0 {
		return fmt.Errorf("log has %d undecodable lines, first: %w", len(lineErrs), lineErrs[0])
	}

	i := 0
	for _, w := range want {
		if i < len(entries) && event.Equal(w, entries[i].Event) {
			i++
			continue
		}
		if w.Kind() == event.KindMediaChange {
			continue
		}
		if i < len(entries) {
			return fmt.Errorf("line %d: expected %s, found %s", entries[i].Line, w, entries[i].Event)
		}
		return fmt.Errorf("log ended before %s", w)
	}
	if i < len(entries) {
		return fmt.Errorf("line %d: unexpected %s", entries[i].Line, entries[i].Event)
	}
	if stats != nil {
		stats.EventsVerified = i
	}
	return nil
}
