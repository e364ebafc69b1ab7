package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"os"

	"github.com/okian/syncevents/internal/domain/codec"
	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/pkg/metrics"
)

// Entry is one decoded line.
type Entry struct {
	// Line is 1-based.
	Line int
	// Offset is the byte offset of the start of the line.
	Offset int64
	Event  event.Event
	Raw    []byte
}

// Reader decodes a log in a single forward pass. It does not follow lines
// appended after the pass started.
type Reader struct {
	src    *bufio.Reader
	codec  *codec.Codec
	closer io.Closer
	path   string
	line   int
	offset int64
	fatal  error
}

// NewReader reads records from r.
func NewReader(r io.Reader, c *codec.Codec) *Reader {
	return &Reader{src: bufio.NewReader(r), codec: c}
}

// OpenReader opens the log at path. The caller must Close the Reader.
func OpenReader(path string, c *codec.Codec) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	r := NewReader(f, c)
	r.closer = f
	r.path = path
	return r, nil
}

// Next returns the next decoded entry. A line that fails to decode yields a
// *LineError and the following call moves on. io.EOF marks the end; any
// other error is fatal and sticks.
func (r *Reader) Next(ctx context.Context) (Entry, error) {
	if r.fatal != nil {
		return Entry{}, r.fatal
	}
	for {
		if err := ctx.Err(); err != nil {
			return Entry{}, err
		}
		raw, err := r.src.ReadBytes('\n')
		if len(raw) == 0 {
			if err == nil || errors.Is(err, io.EOF) {
				r.fatal = io.EOF
			} else {
				r.fatal = &IOError{Op: "read", Path: r.path, Err: err}
			}
			return Entry{}, r.fatal
		}
		if err != nil && !errors.Is(err, io.EOF) {
			r.fatal = &IOError{Op: "read", Path: r.path, Err: err}
			return Entry{}, r.fatal
		}

		r.line++
		start := r.offset
		r.offset += int64(len(raw))

		body := bytes.TrimSpace(raw)
		if len(body) == 0 {
			continue
		}
		e, derr := r.codec.Unmarshal(body)
		if derr != nil {
			metrics.RecordDecodeError(codec.Classify(derr))
			return Entry{}, &LineError{Line: r.line, Offset: start, Err: derr}
		}
		metrics.RecordDecoded(string(e.Kind()))
		return Entry{Line: r.line, Offset: start, Event: e, Raw: body}, nil
	}
}

// All iterates the remaining entries. Line errors are yielded alongside and
// iteration continues; a fatal error is yielded once and ends it. io.EOF is
// not yielded.
func (r *Reader) All(ctx context.Context) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for {
			e, err := r.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			var le *LineError
			if err != nil && !errors.As(err, &le) {
				yield(Entry{}, err)
				return
			}
			if !yield(e, err) {
				return
			}
		}
	}
}

// Close releases the file opened by OpenReader.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	if err != nil {
		return &IOError{Op: "close", Path: r.path, Err: err}
	}
	return nil
}

// ReadFile decodes every line of the log at path. Undecodable lines are
// returned as *LineError values next to the events.
func ReadFile(ctx context.Context, path string, c *codec.Codec) ([]Entry, []error, error) {
	r, err := OpenReader(path, c)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	var entries []Entry
	var lineErrs []error
	for e, err := range r.All(ctx) {
		var le *LineError
		switch {
		case err == nil:
			entries = append(entries, e)
		case errors.As(err, &le):
			lineErrs = append(lineErrs, err)
		default:
			return entries, lineErrs, err
		}
	}
	return entries, lineErrs, nil
}
