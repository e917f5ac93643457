package cache

import "time"

// Store is a minimal key-value cache. It holds no authoritative state:
// losing it must never lose correctness, only performance.
type Store interface {
	Get(key string) ([]byte, bool)
	// Set stores a value. A zero ttl means no expiry.
	Set(key string, value []byte, ttl time.Duration)
	DeleteMany(keys []string)
	// Increment bumps an integer counter, creating it at 1 if absent,
	// and returns the new value.
	Increment(key string) int64
	// Clear drops every entry, counters included. Administrative use only.
	Clear()
}
