package interpret

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheKeyDeterministic(t *testing.T) {
	require.Equal(t, CacheKey("some prompt"), CacheKey("some prompt"))
	require.NotEqual(t, CacheKey("some prompt"), CacheKey("some prompt "))
	require.Len(t, CacheKey(""), 64)
}

func TestCacheGetSet(t *testing.T) {
	cache := NewCache(time.Minute, 10)

	require.True(t, cache.Get("missing").IsNone())

	cache.Set("key", "value")
	got := cache.Get("key")
	require.True(t, got.IsSome())
	require.Equal(t, "value", got.UnwrapOr(""))
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(30*time.Millisecond, 10)

	cache.Set("key", "value")
	require.True(t, cache.Get("key").IsSome())

	time.Sleep(60 * time.Millisecond)
	require.True(t, cache.Get("key").IsNone())
}

func TestCacheSetResetsExpiry(t *testing.T) {
	cache := NewCache(50*time.Millisecond, 10)

	cache.Set("key", "value")
	time.Sleep(30 * time.Millisecond)

	// Re-setting restarts the clock, so the entry survives past the
	// original deadline.
	cache.Set("key", "value")
	time.Sleep(30 * time.Millisecond)

	require.True(t, cache.Get("key").IsSome())
}

func TestCacheCapacityEvictsOldest(t *testing.T) {
	cache := NewCache(time.Minute, 3)

	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("key%d", i), "value")
		// Distinct insertion times so the eviction order is stable.
		time.Sleep(2 * time.Millisecond)
	}
	require.Equal(t, 3, cache.Len())

	cache.Set("key3", "value")

	require.Equal(t, 3, cache.Len())
	require.True(t, cache.Get("key0").IsNone(), "oldest entry evicted")
	require.True(t, cache.Get("key3").IsSome())
}

func TestCacheOverwriteDoesNotEvict(t *testing.T) {
	cache := NewCache(time.Minute, 2)

	cache.Set("a", "1")
	cache.Set("b", "2")
	cache.Set("a", "3")

	require.Equal(t, 2, cache.Len())
	require.Equal(t, "3", cache.Get("a").UnwrapOr(""))
	require.Equal(t, "2", cache.Get("b").UnwrapOr(""))
}
