// Package eventlog stores encoded events as an append-only log of JSON
// lines and reads them back in order.
//
// One process appends to a given file at a time. Within a process the
// Writer serializes appends itself.
package eventlog

import (
	"context"

	"github.com/okian/syncevents/internal/domain/event"
)

// Appender accepts events for durable storage.
type Appender interface {
	// Append stores e. When it returns nil the record survives a crash.
	Append(ctx context.Context, e event.Event) error
}

// Source yields stored events in append order.
type Source interface {
	// Next returns the next entry, a *LineError for an undecodable line,
	// io.EOF at the end, or a fatal error.
	Next(ctx context.Context) (Entry, error)
}
