package advisory

import (
	"context"
	"sync"
	"time"
)

// MemoryMarkers is the in-process marker store. Expiry is checked lazily on
// read, mirroring the TTL semantics of the Redis store.
type MemoryMarkers struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryMarkers() *MemoryMarkers {
	return &MemoryMarkers{entries: make(map[string]time.Time), now: time.Now}
}

// WithClock replaces the clock, for tests.
func (m *MemoryMarkers) WithClock(now func() time.Time) *MemoryMarkers {
	m.now = now
	return m
}

func (m *MemoryMarkers) Set(_ context.Context, key string, window time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = m.now().Add(window)
	return nil
}

func (m *MemoryMarkers) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deadline, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if m.now().After(deadline) {
		delete(m.entries, key)
		return false, nil
	}
	return true, nil
}
