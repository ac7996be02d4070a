package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/topic-classifier/internal/store"
)

func strptr(s string) *string { return &s }

func TestHistoryStoreAppend(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := NewHistoryStore(mock, "history")
	require.NoError(t, err)

	ts := time.Unix(1700000000, 0).UTC()
	mock.ExpectQuery("INSERT INTO history").
		WithArgs("https://example.com", "page text", "tech", strptr("alice"), strptr("batch-1")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "ts"}).AddRow("rec-1", ts))

	rec, err := s.Append(context.Background(), store.HistoryRecord{
		URL:     "https://example.com",
		Text:    "page text",
		Label:   "tech",
		UserID:  "alice",
		BatchID: "batch-1",
	})
	require.NoError(t, err)
	require.Equal(t, "rec-1", rec.ID)
	require.Equal(t, ts, rec.Timestamp)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStoreAppendAnonymous(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := NewHistoryStore(mock, "history")
	require.NoError(t, err)

	ts := time.Unix(1700000000, 0).UTC()
	mock.ExpectQuery("INSERT INTO history").
		WithArgs("https://example.com", "page text", "tech", (*string)(nil), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "ts"}).AddRow("rec-1", ts))

	rec, err := s.Append(context.Background(), store.HistoryRecord{
		URL:   "https://example.com",
		Text:  "page text",
		Label: "tech",
	})
	require.NoError(t, err)
	require.Empty(t, rec.UserID, "anonymous records map user_id to NULL")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStoreLatestForUser(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := NewHistoryStore(mock, "history")
	require.NoError(t, err)

	ts := time.Unix(1700000000, 0).UTC()
	rows := pgxmock.NewRows([]string{"id", "page_text", "label", "ts", "batch_id"}).
		AddRow("rec-1", "page text", "tech", ts, (*string)(nil))
	mock.ExpectQuery("SELECT id::text, page_text, label, ts, batch_id").
		WithArgs("https://example.com", strptr("alice")).
		WillReturnRows(rows)

	rec, err := s.LatestForUser(context.Background(), "https://example.com", "alice")
	require.NoError(t, err)
	require.Equal(t, "tech", rec.Label)
	require.Empty(t, rec.BatchID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStoreLatestForUserMissing(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := NewHistoryStore(mock, "history")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id::text, page_text, label, ts, batch_id").
		WithArgs("https://example.com", (*string)(nil)).
		WillReturnError(pgx.ErrNoRows)

	_, err = s.LatestForUser(context.Background(), "https://example.com", "")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStoreList(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := NewHistoryStore(mock, "history")
	require.NoError(t, err)

	ts := time.Unix(1700000000, 0).UTC()
	rows := pgxmock.NewRows([]string{"id", "url", "page_text", "label", "ts", "user_id", "batch_id"}).
		AddRow("rec-2", "https://b.example.com", "b text", "sports", ts.Add(time.Hour), strptr("alice"), (*string)(nil)).
		AddRow("rec-1", "https://a.example.com", "a text", "tech", ts, strptr("alice"), strptr("batch-1"))
	mock.ExpectQuery("SELECT id::text, url, page_text, label, ts, user_id, batch_id").
		WithArgs(strptr("alice"), 10).
		WillReturnRows(rows)

	records, err := s.List(context.Background(), "alice", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "rec-2", records[0].ID)
	require.Equal(t, "batch-1", records[1].BatchID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStoreDelete(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := NewHistoryStore(mock, "history")
	require.NoError(t, err)

	mock.ExpectExec("DELETE FROM history").
		WithArgs("rec-1", strptr("alice")).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	deleted, err := s.Delete(context.Background(), "rec-1", "alice")
	require.NoError(t, err)
	require.True(t, deleted)

	mock.ExpectExec("DELETE FROM history").
		WithArgs("rec-9", (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err = s.Delete(context.Background(), "rec-9", "")
	require.NoError(t, err)
	require.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
