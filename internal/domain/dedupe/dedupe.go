// Package dedupe tracks round submission IDs so replayed requests do not
// advance a rolling window twice.
package dedupe

import (
	"context"
	"strings"
	"sync"
)

const defaultMaxSize = 50_000

// Deduper records seen IDs to ensure at-most-once application.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID so that it may be retried. Used when an ID was
	// recorded but applying the round failed.
	Unrecord(ctx context.Context, id string)

	// Forget drops every ID with the given prefix, e.g. all rounds of a
	// deleted session.
	Forget(ctx context.Context, prefix string)

	Size() int64
}

// Key builds the ID recorded for a round of a session.
func Key(sessionID, roundID string) string {
	return sessionID + "/" + roundID
}

// ringDeduper keeps at most maxSize IDs, evicting the oldest first.
// maxSize <= 0 means unbounded.
type ringDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // id -> slot in ring, -1 in unbounded mode
	ring    []string
	next    int
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &ringDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize <= 0 {
		d.seen[id] = -1
		return false
	}

	// Slot is either empty or holds the oldest ID.
	if old := d.ring[d.next]; old != "" {
		delete(d.seen, old)
	}
	d.ring[d.next] = id
	d.seen[id] = d.next
	d.next = (d.next + 1) % d.maxSize
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remove(id)
}

func (d *ringDeduper) Forget(_ context.Context, prefix string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id := range d.seen {
		if strings.HasPrefix(id, prefix) {
			d.remove(id)
		}
	}
}

// remove must be called with d.mu held.
func (d *ringDeduper) remove(id string) {
	slot, ok := d.seen[id]
	if !ok {
		return
	}
	delete(d.seen, id)
	if slot >= 0 {
		d.ring[slot] = ""
	}
}

func (d *ringDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
