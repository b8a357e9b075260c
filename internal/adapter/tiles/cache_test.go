package tiles

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_PutGet(t *testing.T) {
	c := NewCache(10, time.Minute)

	c.Put("light", 3, 2, 1, []byte("tile-321"))

	assert.Equal(t, []byte("tile-321"), c.Get("light", 3, 2, 1))
	assert.Nil(t, c.Get("light", 3, 2, 2), "different coordinate misses")
	assert.Nil(t, c.Get("streets", 3, 2, 1), "different layer misses")
}

func TestCache_TTLExpiry(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2026, 4, 26, 12, 0, 0, 0, time.UTC))
	c := NewCache(10, time.Minute)
	c.clock = fake

	c.Put("light", 1, 0, 0, []byte("fresh"))
	assert.NotNil(t, c.Get("light", 1, 0, 0))

	fake.Advance(2 * time.Minute)
	assert.Nil(t, c.Get("light", 1, 0, 0), "entry expired")

	stats := c.Stats()
	assert.Zero(t, stats.Entries, "expired entry removed")
}

func TestCache_LRUEviction(t *testing.T) {
	c := NewCache(2, time.Minute)

	c.Put("light", 1, 0, 0, []byte("a"))
	c.Put("light", 1, 0, 1, []byte("b"))

	// Touch the oldest so it becomes most recently used.
	require.NotNil(t, c.Get("light", 1, 0, 0))

	c.Put("light", 1, 0, 2, []byte("c"))

	assert.NotNil(t, c.Get("light", 1, 0, 0), "recently used survives")
	assert.Nil(t, c.Get("light", 1, 0, 1), "least recently used evicted")
	assert.NotNil(t, c.Get("light", 1, 0, 2))
}

func TestCache_UpdateExisting(t *testing.T) {
	c := NewCache(2, time.Minute)

	c.Put("light", 1, 0, 0, []byte("old"))
	c.Put("light", 1, 0, 0, []byte("new"))

	assert.Equal(t, []byte("new"), c.Get("light", 1, 0, 0))
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestCache_Stats(t *testing.T) {
	c := NewCache(10, time.Minute)
	c.Put("light", 1, 0, 0, []byte("a"))

	c.Get("light", 1, 0, 0) // hit
	c.Get("light", 9, 9, 9) // miss

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 10, stats.MaxEntries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}
