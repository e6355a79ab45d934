package cache

import (
	"context"
	"sync"
	"time"
)

const defaultMaxAge = 5 * time.Minute

type memoryEntry struct {
	data       []byte
	generation uint64
	storedAt   time.Time
}

// MemoryStore is the default in-process Store. Each resource carries a
// generation counter; Invalidate bumps it, which marks every entry written
// under the old generation stale in O(1). Entries also go stale after maxAge.
type MemoryStore struct {
	mu          sync.Mutex
	entries     map[string]memoryEntry
	generations map[string]uint64
	maxAge      time.Duration
	now         func() time.Time
}

// NewMemoryStore returns a MemoryStore whose entries stay fresh for maxAge.
// A non-positive maxAge applies the default of five minutes.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	return &MemoryStore{
		entries:     make(map[string]memoryEntry),
		generations: make(map[string]uint64),
		maxAge:      maxAge,
		now:         time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, k Key) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[k.Canonical()]
	if !ok {
		return Entry{}, false, nil
	}
	fresh := e.generation == m.generations[k.Resource] &&
		m.now().Sub(e.storedAt) < m.maxAge
	return Entry{Data: e.data, Fresh: fresh}, true, nil
}

func (m *MemoryStore) Set(_ context.Context, k Key, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[k.Canonical()] = memoryEntry{
		data:       data,
		generation: m.generations[k.Resource],
		storedAt:   m.now(),
	}
	return nil
}

func (m *MemoryStore) Invalidate(_ context.Context, resource string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generations[resource]++
	return nil
}
