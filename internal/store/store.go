// Package store declares interfaces for persisting cache entries and
// prediction history.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound signals that the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// WordCount is one word with its occurrence count. Cache entries keep the
// counts as an ordered list so descending-frequency order survives
// serialization.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// CacheEntry models one row of the prediction cache, keyed uniquely by URL.
type CacheEntry struct {
	// URL is the unique key; the backing store must enforce uniqueness.
	URL string
	// Text is the preprocessed page text the prediction was made from.
	Text string
	// Label is the predicted topic.
	Label string
	// WordFrequencies holds at most 100 entries in descending-count order.
	WordFrequencies []WordCount
	// Timestamp is the time of the last upsert; freshness is judged against it.
	Timestamp time.Time
}

// HistoryRecord is one served prediction. Records are append-only and never
// mutated; duplicates across time are expected.
type HistoryRecord struct {
	// ID is assigned by the store on append.
	ID string
	// URL is the page the prediction was served for.
	URL   string
	Text  string
	Label string
	// Timestamp is the serve time.
	Timestamp time.Time
	// UserID is empty when the caller was anonymous.
	UserID string
	// BatchID ties records of one multi-URL call together; empty for
	// single-URL predictions.
	BatchID string
}

// CacheStore persists cache entries keyed by URL.
type CacheStore interface {
	// Find loads the entry for url or returns ErrNotFound. Freshness is the
	// caller's concern; Find returns whatever is stored.
	Find(ctx context.Context, url string) (CacheEntry, error)
	// Upsert writes the entry, replacing any prior entry for the same URL.
	Upsert(ctx context.Context, entry CacheEntry) error
}

// HistoryStore persists served predictions.
type HistoryStore interface {
	// Append inserts a record and returns it with the assigned ID.
	Append(ctx context.Context, rec HistoryRecord) (HistoryRecord, error)
	// LatestForUser returns the most recent record for (url, userID) or
	// ErrNotFound.
	LatestForUser(ctx context.Context, url, userID string) (HistoryRecord, error)
	// List returns records newest-first, optionally filtered by userID
	// (empty matches all users), limited to limit rows.
	List(ctx context.Context, userID string, limit int) ([]HistoryRecord, error)
	// Delete removes the record with id, scoped to userID when non-empty.
	// It reports whether a record was deleted.
	Delete(ctx context.Context, id, userID string) (bool, error)
}
