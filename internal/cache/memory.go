package cache

import (
	"strconv"
	"sync"
	"time"
)

// memoryStore is the in-process Store implementation. Entries expire lazily
// on read.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewMemory creates an empty in-memory cache store.
func NewMemory() Store {
	return &memoryStore{
		entries: make(map[string]entry),
	}
}

func (s *memoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (s *memoryStore) Set(key string, value []byte, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: expiresAt}
	s.mu.Unlock()
}

func (s *memoryStore) DeleteMany(keys []string) {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	s.mu.Unlock()
}

func (s *memoryStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

func (s *memoryStore) Increment(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if e, ok := s.entries[key]; ok {
		if parsed, err := strconv.ParseInt(string(e.value), 10, 64); err == nil {
			current = parsed
		}
	}
	current++
	// Counters never expire: a generation counter that vanished would
	// resurrect stale derived views.
	s.entries[key] = entry{value: []byte(strconv.FormatInt(current, 10))}
	return current
}
