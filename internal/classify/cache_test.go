package classify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/topic-classifier/internal/store"
	storememory "github.com/JakeFAU/topic-classifier/internal/store/memory"
)

func TestCacheLookupMiss(t *testing.T) {
	t.Parallel()

	cache := NewCache(storememory.NewCacheStore(), newStubClock(time.Now()), DefaultCacheTTL)

	_, hit, err := cache.Lookup(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	clock := newStubClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	cache := NewCache(storememory.NewCacheStore(), clock, DefaultCacheTTL)

	words := []store.WordCount{{Word: "golang", Count: 3}}
	require.NoError(t, cache.Store(context.Background(), "https://example.com", "golang golang golang", "tech", words))

	entry, hit, err := cache.Lookup(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "tech", entry.Label)
	require.Equal(t, words, entry.WordFrequencies)
	require.Equal(t, clock.Now(), entry.Timestamp)
}

func TestCacheEntryExpires(t *testing.T) {
	t.Parallel()

	clock := newStubClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	cache := NewCache(storememory.NewCacheStore(), clock, DefaultCacheTTL)

	require.NoError(t, cache.Store(context.Background(), "https://example.com", "text", "tech", nil))

	// One nanosecond inside the window is still fresh.
	clock.Advance(DefaultCacheTTL - time.Nanosecond)
	_, hit, err := cache.Lookup(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.True(t, hit)

	// Exactly at the boundary the entry reads as absent.
	clock.Advance(time.Nanosecond)
	_, hit, err = cache.Lookup(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCacheStoreOverwrites(t *testing.T) {
	t.Parallel()

	clock := newStubClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	cache := NewCache(storememory.NewCacheStore(), clock, DefaultCacheTTL)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "https://example.com", "old", "sports", nil))
	clock.Advance(time.Hour)
	require.NoError(t, cache.Store(ctx, "https://example.com", "new", "tech", nil))

	entry, hit, err := cache.Lookup(ctx, "https://example.com")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "tech", entry.Label)
	require.Equal(t, "new", entry.Text)
}

func TestNewCacheDefaultsTTL(t *testing.T) {
	t.Parallel()

	cache := NewCache(storememory.NewCacheStore(), newStubClock(time.Now()), 0)
	require.Equal(t, DefaultCacheTTL, cache.ttl)
}
