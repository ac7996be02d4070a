package classify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JakeFAU/topic-classifier/internal/store"
)

// DefaultCacheTTL is the freshness window after which a cache entry is
// treated as absent.
const DefaultCacheTTL = 24 * time.Hour

// Cache is the result cache: a CacheStore plus the freshness window. An
// expired entry behaves exactly like a missing one, so callers cannot
// distinguish "never cached" from "expired".
type Cache struct {
	store store.CacheStore
	clock Clock
	ttl   time.Duration
}

// NewCache wraps a CacheStore with freshness semantics. A non-positive ttl
// falls back to DefaultCacheTTL.
func NewCache(s store.CacheStore, clock Clock, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{store: s, clock: clock, ttl: ttl}
}

// Lookup returns the entry for url and true only when the entry exists and
// is younger than the freshness window. Store failures propagate; they are
// not retried.
func (c *Cache) Lookup(ctx context.Context, url string) (store.CacheEntry, bool, error) {
	entry, err := c.store.Find(ctx, url)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.CacheEntry{}, false, nil
		}
		return store.CacheEntry{}, false, fmt.Errorf("cache lookup %s: %w", url, err)
	}
	if c.clock.Now().Sub(entry.Timestamp) >= c.ttl {
		// Stale entries stay in storage until overwritten but are invisible
		// to readers.
		return store.CacheEntry{}, false, nil
	}
	return entry, true, nil
}

// Store upserts the entry for url, overwriting any prior entry and stamping
// it with the current time.
func (c *Cache) Store(ctx context.Context, url, text, label string, wordFrequencies []store.WordCount) error {
	entry := store.CacheEntry{
		URL:             url,
		Text:            text,
		Label:           label,
		WordFrequencies: wordFrequencies,
		Timestamp:       c.clock.Now(),
	}
	if err := c.store.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("cache store %s: %w", url, err)
	}
	return nil
}
