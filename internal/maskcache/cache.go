package maskcache

import (
	"context"
	"sync"
)

// Cache stores decoded mask pixels.
type Cache interface {
	// Get returns the pixels stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]int64, bool, error)
	// Set stores pixels under key.
	Set(ctx context.Context, key string, pixels []int64) error
	Close() error
}

// Memory is a thread-safe in-process cache with FIFO eviction.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string][]int64
	order      []string
	maxEntries int
}

// NewMemory creates a cache holding at most maxEntries masks. A
// non-positive maxEntries means unbounded.
func NewMemory(maxEntries int) *Memory {
	return &Memory{
		entries:    make(map[string][]int64),
		maxEntries: maxEntries,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	px, ok := m.entries[key]
	return px, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, pixels []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; ok {
		m.entries[key] = pixels
		return nil
	}
	if m.maxEntries > 0 {
		for len(m.order) >= m.maxEntries {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.entries, oldest)
		}
	}
	m.entries[key] = pixels
	m.order = append(m.order, key)
	return nil
}

// Len returns the number of cached masks.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.entries = make(map[string][]int64)
	m.order = nil
	m.mu.Unlock()
	return nil
}

// Null is a cache that never stores anything.
type Null struct{}

// NewNull returns a cache that always misses.
func NewNull() Null { return Null{} }

func (Null) Get(context.Context, string) ([]int64, bool, error) { return nil, false, nil }
func (Null) Set(context.Context, string, []int64) error         { return nil }
func (Null) Close() error                                       { return nil }
