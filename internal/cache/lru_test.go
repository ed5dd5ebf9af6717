// internal/cache/lru_test.go
package cache

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(data string) Document {
	return Document{Filename: "report.pdf", ContentType: "application/pdf", Data: []byte(data)}
}

func TestLRUCache_Basic(t *testing.T) {
	t.Run("put and get document", func(t *testing.T) {
		// Arrange
		cache := NewLRU(3, 0)
		ctx := context.Background()

		// Act
		require.NoError(t, cache.Put(ctx, "r1", doc("%PDF-1.3 data1")))
		got, hit, err := cache.Get(ctx, "r1")

		// Assert
		require.NoError(t, err)
		assert.True(t, hit, "should be a cache hit")
		assert.Equal(t, "%PDF-1.3 data1", string(got.Data))
		assert.Equal(t, "report.pdf", got.Filename)
		assert.Equal(t, "application/pdf", got.ContentType)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("cache miss returns false", func(t *testing.T) {
		cache := NewLRU(3, 0)

		_, hit, err := cache.Get(context.Background(), "missing")

		require.NoError(t, err)
		assert.False(t, hit, "should be a cache miss")
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		// Arrange
		cache := NewLRU(2, 0)
		ctx := context.Background()

		require.NoError(t, cache.Put(ctx, "a1", doc("data1")))
		require.NoError(t, cache.Put(ctx, "a2", doc("data2")))
		_, _, _ = cache.Get(ctx, "a1")
		require.NoError(t, cache.Put(ctx, "a3", doc("data3")))

		// Act - a2 was least recently used
		_, hit1, _ := cache.Get(ctx, "a1")
		_, hit2, _ := cache.Get(ctx, "a2")
		_, hit3, _ := cache.Get(ctx, "a3")

		// Assert
		assert.True(t, hit1)
		assert.False(t, hit2, "a2 should have been evicted")
		assert.True(t, hit3)
		assert.Equal(t, int64(1), cache.Stats().Evictions)
	})

	t.Run("put replaces existing entry", func(t *testing.T) {
		cache := NewLRU(2, 0)
		ctx := context.Background()

		require.NoError(t, cache.Put(ctx, "r", doc("old")))
		require.NoError(t, cache.Put(ctx, "r", doc("new")))

		got, hit, err := cache.Get(ctx, "r")
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, "new", string(got.Data))
		assert.Equal(t, 1, cache.Stats().Items)
	})

	t.Run("delete removes entry", func(t *testing.T) {
		cache := NewLRU(2, 0)
		ctx := context.Background()

		require.NoError(t, cache.Put(ctx, "r", doc("data")))
		require.NoError(t, cache.Delete(ctx, "r"))

		_, hit, _ := cache.Get(ctx, "r")
		assert.False(t, hit)
	})
}

func TestLRUCache_TTL(t *testing.T) {
	cache := NewLRU(4, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "r", doc("data")))

	now = now.Add(30 * time.Second)
	_, hit, _ := cache.Get(ctx, "r")
	assert.True(t, hit)

	now = now.Add(time.Minute)
	_, hit, _ = cache.Get(ctx, "r")
	assert.False(t, hit, "entry should have expired")

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Expired)
	assert.Equal(t, 0, stats.Items)
}

func TestLRUCache_Compression(t *testing.T) {
	cache := NewLRU(2, 0)
	ctx := context.Background()
	payload := bytes.Repeat([]byte("LifeSync Wellness Report "), 400)

	require.NoError(t, cache.Put(ctx, "big", Document{Data: payload}))

	stats := cache.Stats()
	assert.Equal(t, int64(len(payload)), stats.Bytes)
	assert.Less(t, stats.CompressedBytes, stats.Bytes)

	got, hit, err := cache.Get(ctx, "big")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, payload, got.Data)
}

func TestLRUCache_Stats(t *testing.T) {
	cache := NewLRU(2, 0)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "r", doc("data")))
	_, _, _ = cache.Get(ctx, "r")
	_, _, _ = cache.Get(ctx, "missing")

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate(), 0.001)

	cache.Clear()
	stats = cache.Stats()
	assert.Equal(t, 0, stats.Items)
	assert.Equal(t, 0.0, stats.HitRate())
}

func TestLRUCache_Concurrent(t *testing.T) {
	cache := NewLRU(8, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%10))
			_ = cache.Put(ctx, key, doc(key))
			_, _, _ = cache.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Stats().Items, 8)
}

func TestLRUCache_CancelledContext(t *testing.T) {
	cache := NewLRU(2, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, cache.Put(ctx, "r", doc("data")))
	_, _, err := cache.Get(ctx, "r")
	assert.Error(t, err)
}
