// Package dedupe tracks record identities so a (week, person) slot is never
// filled twice.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Duplicates lists keys offered more than once, in the order the first
	// repeat was observed.
	Duplicates() []string

	Size() int
}

type inMemoryDeduper struct {
	mu         sync.Mutex
	seen       map[string]int // key -> times offered
	duplicates []string
	capacity   int
}

// NewInMemoryDeduper creates an unbounded map-backed deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int, d.capacity)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.seen[key]
	d.seen[key] = n + 1
	if n == 1 {
		d.duplicates = append(d.duplicates, key)
	}
	return n > 0
}

func (d *inMemoryDeduper) Duplicates() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]string, len(d.duplicates))
	copy(out, d.duplicates)
	return out
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
