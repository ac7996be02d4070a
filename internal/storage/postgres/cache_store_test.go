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

func TestNewCacheStoreRejectsBadTableName(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewCacheStore(mock, "cache; DROP TABLE users")
	require.Error(t, err)
}

func TestCacheStoreFind(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := NewCacheStore(mock, "cache_entries")
	require.NoError(t, err)

	ts := time.Unix(1700000000, 0).UTC()
	rows := pgxmock.NewRows([]string{"page_text", "label", "word_frequencies", "ts"}).
		AddRow("page text", "tech", []byte(`[{"word":"golang","count":2}]`), ts)
	mock.ExpectQuery("SELECT page_text, label, word_frequencies, ts").
		WithArgs("https://example.com").
		WillReturnRows(rows)

	entry, err := s.Find(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.Equal(t, "tech", entry.Label)
	require.Equal(t, []store.WordCount{{Word: "golang", Count: 2}}, entry.WordFrequencies)
	require.Equal(t, ts, entry.Timestamp)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheStoreFindMissing(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := NewCacheStore(mock, "cache_entries")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT page_text, label, word_frequencies, ts").
		WithArgs("https://missing.example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err = s.Find(context.Background(), "https://missing.example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheStoreUpsert(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := NewCacheStore(mock, "cache_entries")
	require.NoError(t, err)

	ts := time.Unix(1700000000, 0).UTC()
	entry := store.CacheEntry{
		URL:             "https://example.com",
		Text:            "page text",
		Label:           "tech",
		WordFrequencies: []store.WordCount{{Word: "golang", Count: 2}},
		Timestamp:       ts,
	}

	mock.ExpectExec("INSERT INTO cache_entries").
		WithArgs(entry.URL, entry.Text, entry.Label, []byte(`[{"word":"golang","count":2}]`), ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Upsert(context.Background(), entry))
	require.NoError(t, mock.ExpectationsWereMet())
}
