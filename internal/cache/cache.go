package cache

import (
	"sync"
	"time"
)

// Clock abstracts time so TTL behavior is testable without sleeping
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Cache is a TTL key-value store. Entries expire lazily on lookup;
// Purge sweeps expired entries eagerly for long-running hosts.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Purge()
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Memory is the in-process Cache implementation. Safe for concurrent
// use; the host serves multiple requests even though each computation
// is synchronous.
type Memory struct {
	mu      sync.RWMutex
	clock   Clock
	entries map[string]entry
}

// NewMemory builds a Memory cache on the given clock; nil means the
// system clock.
func NewMemory(clock Clock) *Memory {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Memory{
		clock:   clock,
		entries: make(map[string]entry),
	}
}

// Get returns the live value for key, evicting it if expired
func (m *Memory) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if m.clock.Now().After(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a Set may have refreshed it
		if cur, ok := m.entries[key]; ok && m.clock.Now().After(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl
func (m *Memory) Set(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = entry{
		value:     value,
		expiresAt: m.clock.Now().Add(ttl),
	}
	m.mu.Unlock()
}

// Purge removes all expired entries
func (m *Memory) Purge() {
	now := m.clock.Now()
	m.mu.Lock()
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}

// Len reports the number of stored entries, expired or not
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
