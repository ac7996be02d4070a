// Package memory implements in-memory cache and history stores, used in
// tests and when the service runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JakeFAU/topic-classifier/internal/store"
)

// CacheStore is a mutex-guarded map keyed by URL.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[string]store.CacheEntry
}

// NewCacheStore creates an empty in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{entries: make(map[string]store.CacheEntry)}
}

// Find returns the entry for url or store.ErrNotFound.
func (s *CacheStore) Find(_ context.Context, url string) (store.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[url]
	if !ok {
		return store.CacheEntry{}, store.ErrNotFound
	}
	return entry, nil
}

// Upsert stores the entry, replacing any prior entry for the same URL.
func (s *CacheStore) Upsert(_ context.Context, entry store.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.URL] = entry
	return nil
}

// HistoryStore is an append-only in-memory history log.
type HistoryStore struct {
	mu      sync.RWMutex
	records []store.HistoryRecord
	now     func() time.Time
}

// NewHistoryStore creates an empty in-memory history store. now may be nil,
// in which case time.Now is used.
func NewHistoryStore(now func() time.Time) *HistoryStore {
	if now == nil {
		now = time.Now
	}
	return &HistoryStore{now: now}
}

// Append inserts the record, assigning an ID and timestamp.
func (s *HistoryStore) Append(_ context.Context, rec store.HistoryRecord) (store.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = uuid.NewString()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	s.records = append(s.records, rec)
	return rec, nil
}

// LatestForUser returns the newest record matching (url, userID).
func (s *HistoryStore) LatestForUser(_ context.Context, url, userID string) (store.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].URL == url && s.records[i].UserID == userID {
			return s.records[i], nil
		}
	}
	return store.HistoryRecord{}, store.ErrNotFound
}

// List returns records newest-first, filtered by userID when non-empty.
func (s *HistoryStore) List(_ context.Context, userID string, limit int) ([]store.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []store.HistoryRecord
	for _, rec := range s.records {
		if userID != "" && rec.UserID != userID {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes the record with id, scoped to userID when non-empty.
func (s *HistoryStore) Delete(_ context.Context, id, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.records {
		if rec.ID != id {
			continue
		}
		if userID != "" && rec.UserID != userID {
			continue
		}
		s.records = append(s.records[:i], s.records[i+1:]...)
		return true, nil
	}
	return false, nil
}
