// Package extract derives shot metadata from the media paths recorded in
// MediaChange events.
//
// The default layout follows /mnt/<project>/<sequence>/<shot>/<task>/...,
// i.e. segments 2 to 5 of the slash-split path.
package extract

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/okian/syncevents/internal/domain/event"
	"github.com/okian/syncevents/pkg/metrics"
)

// Sentinel kinds for extraction errors.
var (
	ErrNotMediaChange = errors.New("not a MediaChange event")
	ErrNoTarget       = errors.New("media reference has no target url")
	ErrPathTooShort   = errors.New("path has too few segments")
)

// DefaultTokenIndices locate project, sequence, shot and task.
var DefaultTokenIndices = [4]int{2, 3, 4, 5}

// Metadata is what a media path says about the shot under review.
type Metadata struct {
	Project   string    `json:"project"`
	Sequence  string    `json:"sequence"`
	Shot      string    `json:"shot"`
	Task      string    `json:"task"`
	FilePath  string    `json:"filepath"`
	StartTime time.Time `json:"starttime"`
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTokenIndices sets the path segments holding project, sequence, shot
// and task. Anything but four non-negative indices is ignored.
func WithTokenIndices(indices []int) Option {
	return func(x *Extractor) {
		if len(indices) != 4 {
			return
		}
		for _, i := range indices {
			if i < 0 {
				return
			}
		}
		copy(x.indices[:], indices)
	}
}

// Extractor maps media paths to Metadata.
type Extractor struct {
	indices [4]int
}

// New returns an Extractor using DefaultTokenIndices unless overridden.
func New(opts ...Option) *Extractor {
	x := &Extractor{indices: DefaultTokenIndices}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// FromEvent extracts metadata from a MediaChange. Other kinds return
// ErrNotMediaChange.
func (x *Extractor) FromEvent(e event.Event) (Metadata, error) {
	mc, ok := e.(event.MediaChange)
	if !ok {
		return Metadata{}, ErrNotMediaChange
	}
	target := mc.TargetURL()
	if target == "" {
		return Metadata{}, ErrNoTarget
	}
	return x.FromPath(target, mc.Timestamp())
}

// FromPath extracts metadata from a path or file:// URL seen at ts.
func (x *Extractor) FromPath(target string, ts time.Time) (Metadata, error) {
	p := target
	if u, err := url.Parse(target); err == nil && u.Scheme == "file" {
		p = u.Path
	}
	segs := strings.Split(p, "/")
	need := 0
	for _, i := range x.indices {
		need = max(need, i+1)
	}
	if len(segs) < need {
		return Metadata{}, fmt.Errorf("%w: %q has %d, need %d", ErrPathTooShort, target, len(segs), need)
	}
	metrics.RecordMetadataExtracted()
	return Metadata{
		Project:   segs[x.indices[0]],
		Sequence:  segs[x.indices[1]],
		Shot:      segs[x.indices[2]],
		Task:      segs[x.indices[3]],
		FilePath:  target,
		StartTime: ts,
	}, nil
}

// FromEvent extracts with the default layout.
func FromEvent(e event.Event) (Metadata, error) {
	return New().FromEvent(e)
}
