package eventlog

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/okian/syncevents/internal/domain/codec"
	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/pkg/logger"
	"github.com/okian/syncevents/pkg/metrics"
)

// State is the lifecycle state of a Writer.
type State int

// Writer states.
const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

const defaultFileMode os.FileMode = 0o644

// Writer appends one encoded record per line. It is safe for concurrent use.
type Writer struct {
	mu    sync.Mutex
	codec *codec.Codec
	sync  bool
	mode  os.FileMode
	log   logger.Logger

	state State
	path  string
	file  *os.File
	buf   *bufio.Writer
	count int64
}

// NewWriter returns a closed Writer that encodes with c.
func NewWriter(c *codec.Codec, opts ...Option) *Writer {
	w := &Writer{
		codec: c,
		sync:  true,
		mode:  defaultFileMode,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open acquires path for appending, creating it if needed. A file left with
// a truncated final line gets a line break first so that new records start
// on their own line.
func (w *Writer) Open(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateOpen {
		return ErrAlreadyOpen
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, w.mode)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	torn, err := endsMidLine(f)
	if err != nil {
		_ = f.Close()
		return &IOError{Op: "open", Path: path, Err: err}
	}
	if torn {
		if _, err := f.Write([]byte{'\n'}); err != nil {
			_ = f.Close()
			return &IOError{Op: "open", Path: path, Err: err}
		}
		w.log.Warn(context.Background(), "event log ended mid-line; starting a new line",
			logger.String("path", path))
	}

	w.file = f
	w.buf = bufio.NewWriter(f)
	w.path = path
	w.count = 0
	w.state = StateOpen
	metrics.RecordLogOpened()
	w.log.Info(context.Background(), "event log opened", logger.String("path", path), logger.Bool("sync", w.sync))
	return nil
}

func endsMidLine(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return last[0] != '\n', nil
}

// Append encodes e and appends it as one line. The line is flushed, and
// synced unless disabled, before Append returns.
func (w *Writer) Append(ctx context.Context, e event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := w.codec.Marshal(e)
	if err != nil {
		metrics.RecordAppendError()
		return err
	}
	return w.appendLine(ctx, string(e.Kind()), line)
}

// AppendRecord validates r by decoding it, then appends the event it holds.
func (w *Writer) AppendRecord(ctx context.Context, r event.Record) error {
	e, err := w.codec.Decode(r)
	if err != nil {
		metrics.RecordAppendError()
		return err
	}
	return w.Append(ctx, e)
}

func (w *Writer) appendLine(ctx context.Context, kind string, line []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateOpen {
		metrics.RecordAppendError()
		return ErrNotOpen
	}

	start := time.Now()
	if err := w.write(line); err != nil {
		metrics.RecordAppendError()
		w.log.Error(ctx, "append failed", logger.String("path", w.path), logger.String("kind", kind), logger.Error(err))
		return &IOError{Op: "append", Path: w.path, Err: err}
	}
	w.count++
	metrics.RecordAppend(kind, len(line)+1, float64(time.Since(start).Microseconds())/1000.0)
	w.log.Debug(ctx, "record appended", logger.String("kind", kind), logger.Int64("seq", w.count))
	return nil
}

func (w *Writer) write(line []byte) error {
	if _, err := w.buf.Write(line); err != nil {
		return err
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return err
	}
	if err := w.buf.Flush(); err != nil {
		return err
	}
	if w.sync {
		return w.file.Sync()
	}
	return nil
}

// Close flushes and releases the file. Closing a closed Writer is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateOpen {
		return nil
	}
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	path := w.path
	w.state = StateClosed
	w.file = nil
	w.buf = nil

	if err := errors.Join(flushErr, closeErr); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	w.log.Info(context.Background(), "event log closed", logger.String("path", path), logger.Int64("records", w.count))
	return nil
}

// State reports whether the Writer is open.
func (w *Writer) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Path returns the file the Writer appends to, or the last one it did.
func (w *Writer) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// Count returns the number of records appended since Open.
func (w *Writer) Count() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}
