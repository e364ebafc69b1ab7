// Package dedupe suppresses repeated values such as a MediaChange that
// points at the media already on screen.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxKeys = 1024

// Deduper remembers the last value seen under each key.
type Deduper interface {
	// Repeat reports whether value equals the last value recorded under key.
	// A new value replaces the recorded one. Check and record are atomic.
	Repeat(ctx context.Context, key, value string) bool

	// Last returns the value recorded under key.
	Last(ctx context.Context, key string) (string, bool)

	// Set records value under key without checking it.
	Set(ctx context.Context, key, value string)

	// Forget drops key so that its next value counts as new.
	Forget(ctx context.Context, key string)

	// Size returns the number of tracked keys.
	Size() int64
}

type entry struct {
	key   string
	value string
}

// inMemoryDeduper keeps the last value per key. In bounded mode the key
// touched least recently is evicted first.
type inMemoryDeduper struct {
	mu      sync.Mutex
	last    map[string]*list.Element
	order   *list.List // front is most recently touched
	maxKeys int        // 0 or negative = unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxKeys: defaultMaxKeys}
	for _, opt := range opts {
		opt(d)
	}
	d.last = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) Repeat(_ context.Context, key, value string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.last[key]; ok && el.Value.(*entry).value == value {
		d.order.MoveToFront(el)
		return true
	}
	d.record(key, value)
	return false
}

func (d *inMemoryDeduper) Last(_ context.Context, key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.last[key]; ok {
		return el.Value.(*entry).value, true
	}
	return "", false
}

func (d *inMemoryDeduper) Set(_ context.Context, key, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(key, value)
}

// record must be called with d.mu held.
func (d *inMemoryDeduper) record(key, value string) {
	if el, ok := d.last[key]; ok {
		d.order.MoveToFront(el)
		el.Value.(*entry).value = value
		return
	}
	if d.maxKeys > 0 && len(d.last) >= d.maxKeys {
		d.evictOldest()
	}
	d.last[key] = d.order.PushFront(&entry{key: key, value: value})
	d.size.Add(1)
}

func (d *inMemoryDeduper) Forget(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.last[key]; ok {
		d.order.Remove(el)
		delete(d.last, key)
		d.size.Add(-1)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Back()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.last, el.Value.(*entry).key)
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
