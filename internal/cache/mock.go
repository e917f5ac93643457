package cache

import (
	"strconv"
	"sync"
	"time"
)

// MockStore is a mock implementation of Store for testing. It records every
// call and keeps values in a plain map without expiry.
type MockStore struct {
	mu sync.Mutex

	values map[string][]byte

	GetCalls        []string
	SetCalls        []SetCall
	DeleteManyCalls [][]string
	IncrementCalls  []string
	ClearCalls      int
}

type SetCall struct {
	Key   string
	Value []byte
	TTL   time.Duration
}

// NewMockStore creates a new mock cache store.
func NewMockStore() *MockStore {
	return &MockStore{values: make(map[string][]byte)}
}

// Reset clears all call records and stored values.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string][]byte)
	m.GetCalls = nil
	m.SetCalls = nil
	m.DeleteManyCalls = nil
	m.IncrementCalls = nil
	m.ClearCalls = 0
}

// Deleted reports whether the key was part of any DeleteMany call.
func (m *MockStore) Deleted(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, keys := range m.DeleteManyCalls {
		for _, k := range keys {
			if k == key {
				return true
			}
		}
	}
	return false
}

func (m *MockStore) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls = append(m.GetCalls, key)
	value, ok := m.values[key]
	return value, ok
}

func (m *MockStore) Set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Value: value, TTL: ttl})
	m.values[key] = value
}

func (m *MockStore) DeleteMany(keys []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteManyCalls = append(m.DeleteManyCalls, keys)
	for _, key := range keys {
		delete(m.values, key)
	}
}

func (m *MockStore) Increment(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IncrementCalls = append(m.IncrementCalls, key)
	var current int64
	if raw, ok := m.values[key]; ok {
		if parsed, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			current = parsed
		}
	}
	current++
	m.values[key] = []byte(strconv.FormatInt(current, 10))
	return current
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	m.values = make(map[string][]byte)
}

var _ Store = (*MockStore)(nil)
