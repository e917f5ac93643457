package cache_test

import (
	"testing"
	"time"

	"github.com/mvoss/ttstats/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := cache.NewMemory()

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Set("key", []byte("value"), 0)
	value, ok := store.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), value)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := cache.NewMemory()

	store.Set("short", []byte("v"), 10*time.Millisecond)
	store.Set("forever", []byte("v"), 0)

	_, ok := store.Get("short")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = store.Get("short")
	assert.False(t, ok, "expired entries read as misses")
	_, ok = store.Get("forever")
	assert.True(t, ok, "zero ttl means no expiry")
}

func TestMemoryStoreDeleteMany(t *testing.T) {
	store := cache.NewMemory()

	store.Set("a", []byte("1"), 0)
	store.Set("b", []byte("2"), 0)
	store.Set("c", []byte("3"), 0)

	store.DeleteMany([]string{"a", "b", "never-existed"})

	_, ok := store.Get("a")
	assert.False(t, ok)
	_, ok = store.Get("b")
	assert.False(t, ok)
	_, ok = store.Get("c")
	assert.True(t, ok)
}

func TestMemoryStoreIncrement(t *testing.T) {
	store := cache.NewMemory()

	assert.Equal(t, int64(1), store.Increment("counter"), "a missing counter starts at 1")
	assert.Equal(t, int64(2), store.Increment("counter"))
	assert.Equal(t, int64(3), store.Increment("counter"))

	value, ok := store.Get("counter")
	require.True(t, ok)
	assert.Equal(t, []byte("3"), value)
}

func TestMemoryStoreClear(t *testing.T) {
	store := cache.NewMemory()

	store.Set("a", []byte("1"), 0)
	store.Increment("counter")
	store.Clear()

	_, ok := store.Get("a")
	assert.False(t, ok)
	assert.Equal(t, int64(1), store.Increment("counter"), "counters restart after a clear")
}

func TestCodecRoundTrip(t *testing.T) {
	type payload struct {
		Name  string
		Count int
	}

	raw, err := cache.Encode(payload{Name: "x", Count: 3})
	require.NoError(t, err)

	var out payload
	require.NoError(t, cache.Decode(raw, &out))
	assert.Equal(t, payload{Name: "x", Count: 3}, out)
}
