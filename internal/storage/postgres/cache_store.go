package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JakeFAU/topic-classifier/internal/store"
)

// CacheStore persists cache entries in Postgres. It assumes a table schema
// like:
//
//	CREATE TABLE cache_entries (
//		url TEXT PRIMARY KEY,
//		page_text TEXT NOT NULL,
//		label TEXT NOT NULL,
//		word_frequencies JSONB NOT NULL,
//		ts TIMESTAMPTZ NOT NULL
//	);
//
// The primary key on url enforces the at-most-one-entry-per-url invariant.
type CacheStore struct {
	pool  querier
	table string
}

// NewCacheStore constructs a CacheStore on an existing pool.
func NewCacheStore(pool querier, table string) (*CacheStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := tableOrDefault(table, "cache_entries")
	if err != nil {
		return nil, err
	}
	return &CacheStore{pool: pool, table: table}, nil
}

// Find loads the entry for url or returns store.ErrNotFound.
func (s *CacheStore) Find(ctx context.Context, url string) (store.CacheEntry, error) {
	query := fmt.Sprintf(`
SELECT page_text, label, word_frequencies, ts
FROM %s
WHERE url = $1`, s.table)

	var (
		text      string
		label     string
		wordsJSON []byte
		ts        time.Time
	)
	err := s.pool.QueryRow(ctx, query, url).Scan(&text, &label, &wordsJSON, &ts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.CacheEntry{}, store.ErrNotFound
		}
		return store.CacheEntry{}, fmt.Errorf("select cache entry: %w", err)
	}
	var words []store.WordCount
	if err := json.Unmarshal(wordsJSON, &words); err != nil {
		return store.CacheEntry{}, fmt.Errorf("unmarshal word frequencies: %w", err)
	}
	return store.CacheEntry{
		URL:             url,
		Text:            text,
		Label:           label,
		WordFrequencies: words,
		Timestamp:       ts,
	}, nil
}

// Upsert writes the entry, replacing any prior row for the same URL.
func (s *CacheStore) Upsert(ctx context.Context, entry store.CacheEntry) error {
	wordsJSON, err := json.Marshal(entry.WordFrequencies)
	if err != nil {
		return fmt.Errorf("marshal word frequencies: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (url, page_text, label, word_frequencies, ts)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (url) DO UPDATE SET
	page_text = EXCLUDED.page_text,
	label = EXCLUDED.label,
	word_frequencies = EXCLUDED.word_frequencies,
	ts = EXCLUDED.ts`, s.table)

	if _, err := s.pool.Exec(ctx, query, entry.URL, entry.Text, entry.Label, wordsJSON, entry.Timestamp); err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}
