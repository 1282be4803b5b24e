package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is the default, process-local Store backed by go-cache. Expired
// entries are swept on a periodic check interval; callers never block on it.
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore creates a MemoryStore with the given default TTL and sweep
// interval.
func NewMemoryStore(defaultTTL, checkPeriod time.Duration) *MemoryStore {
	return &MemoryStore{c: gocache.New(defaultTTL, checkPeriod)}
}

// Get returns the cached value for key, if present and unexpired.
func (m *MemoryStore) Get(key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// Set stores value under key for the given TTL.
func (m *MemoryStore) Set(key string, value []byte, ttl time.Duration) {
	m.c.Set(key, value, ttl)
}

// Delete removes key. Deleting an absent key is a no-op.
func (m *MemoryStore) Delete(key string) {
	m.c.Delete(key)
}

// DeletePattern removes every key containing substr.
func (m *MemoryStore) DeletePattern(substr string) {
	for key := range m.c.Items() {
		if strings.Contains(key, substr) {
			m.c.Delete(key)
		}
	}
}

// Flush removes all entries.
func (m *MemoryStore) Flush() {
	m.c.Flush()
}
