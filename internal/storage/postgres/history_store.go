package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JakeFAU/topic-classifier/internal/store"
)

// HistoryStore persists the append-only prediction history. It assumes a
// table schema like:
//
//	CREATE TABLE history (
//		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//		url TEXT NOT NULL,
//		page_text TEXT NOT NULL,
//		label TEXT NOT NULL,
//		ts TIMESTAMPTZ NOT NULL DEFAULT now(),
//		user_id TEXT,
//		batch_id TEXT
//	);
//	CREATE INDEX ON history (url);
//	CREATE INDEX ON history (user_id);
//	CREATE INDEX ON history (ts DESC);
//	CREATE INDEX ON history (batch_id);
type HistoryStore struct {
	pool  querier
	table string
}

// NewHistoryStore constructs a HistoryStore on an existing pool.
func NewHistoryStore(pool querier, table string) (*HistoryStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := tableOrDefault(table, "history")
	if err != nil {
		return nil, err
	}
	return &HistoryStore{pool: pool, table: table}, nil
}

// Append inserts the record; the database assigns id and timestamp.
func (s *HistoryStore) Append(ctx context.Context, rec store.HistoryRecord) (store.HistoryRecord, error) {
	query := fmt.Sprintf(`
INSERT INTO %s (url, page_text, label, user_id, batch_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, ts`, s.table)

	err := s.pool.QueryRow(ctx, query,
		rec.URL,
		rec.Text,
		rec.Label,
		nullable(rec.UserID),
		nullable(rec.BatchID),
	).Scan(&rec.ID, &rec.Timestamp)
	if err != nil {
		return store.HistoryRecord{}, fmt.Errorf("insert history record: %w", err)
	}
	return rec, nil
}

// LatestForUser returns the newest record for (url, userID) or
// store.ErrNotFound. An empty userID matches records stored without one.
func (s *HistoryStore) LatestForUser(ctx context.Context, url, userID string) (store.HistoryRecord, error) {
	query := fmt.Sprintf(`
SELECT id::text, page_text, label, ts, batch_id
FROM %s
WHERE url = $1 AND user_id IS NOT DISTINCT FROM $2
ORDER BY ts DESC
LIMIT 1`, s.table)

	rec := store.HistoryRecord{URL: url, UserID: userID}
	var batchID *string
	err := s.pool.QueryRow(ctx, query, url, nullable(userID)).
		Scan(&rec.ID, &rec.Text, &rec.Label, &rec.Timestamp, &batchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.HistoryRecord{}, store.ErrNotFound
		}
		return store.HistoryRecord{}, fmt.Errorf("select history record: %w", err)
	}
	rec.BatchID = fromNullable(batchID)
	return rec, nil
}

// List returns records newest-first, filtered by userID when non-empty.
func (s *HistoryStore) List(ctx context.Context, userID string, limit int) ([]store.HistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
SELECT id::text, url, page_text, label, ts, user_id, batch_id
FROM %s
WHERE $1::text IS NULL OR user_id = $1
ORDER BY ts DESC
LIMIT $2`, s.table)

	rows, err := s.pool.Query(ctx, query, nullable(userID), limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []store.HistoryRecord
	for rows.Next() {
		var (
			rec     store.HistoryRecord
			ts      time.Time
			user    *string
			batchID *string
		)
		if err := rows.Scan(&rec.ID, &rec.URL, &rec.Text, &rec.Label, &ts, &user, &batchID); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		rec.Timestamp = ts
		rec.UserID = fromNullable(user)
		rec.BatchID = fromNullable(batchID)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return out, nil
}

// Delete removes the record with id, scoped to userID when non-empty. It
// reports whether a row was deleted.
func (s *HistoryStore) Delete(ctx context.Context, id, userID string) (bool, error) {
	query := fmt.Sprintf(`
DELETE FROM %s
WHERE id = $1::uuid AND ($2::text IS NULL OR user_id = $2)`, s.table)

	tag, err := s.pool.Exec(ctx, query, id, nullable(userID))
	if err != nil {
		return false, fmt.Errorf("delete history record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
