package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/topic-classifier/internal/store"
)

func TestCacheStoreFindMissing(t *testing.T) {
	t.Parallel()

	s := NewCacheStore()
	_, err := s.Find(context.Background(), "https://example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCacheStoreUpsertReplaces(t *testing.T) {
	t.Parallel()

	s := NewCacheStore()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, store.CacheEntry{URL: "u", Label: "a"}))
	require.NoError(t, s.Upsert(ctx, store.CacheEntry{URL: "u", Label: "b"}))

	entry, err := s.Find(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, "b", entry.Label)
}

func TestHistoryStoreAppendAssignsIDAndTimestamp(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewHistoryStore(func() time.Time { return now })

	rec, err := s.Append(context.Background(), store.HistoryRecord{URL: "u", Label: "tech"})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, now, rec.Timestamp)
}

func TestHistoryStoreLatestForUser(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s := NewHistoryStore(func() time.Time { return current })
	ctx := context.Background()

	_, err := s.Append(ctx, store.HistoryRecord{URL: "u", Label: "old", UserID: "alice"})
	require.NoError(t, err)
	current = base.Add(time.Hour)
	_, err = s.Append(ctx, store.HistoryRecord{URL: "u", Label: "new", UserID: "alice"})
	require.NoError(t, err)
	_, err = s.Append(ctx, store.HistoryRecord{URL: "u", Label: "other", UserID: "bob"})
	require.NoError(t, err)

	rec, err := s.LatestForUser(ctx, "u", "alice")
	require.NoError(t, err)
	require.Equal(t, "new", rec.Label)

	_, err = s.LatestForUser(ctx, "u", "carol")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestHistoryStoreListFiltersAndLimits(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	i := 0
	s := NewHistoryStore(func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Minute)
	})
	ctx := context.Background()

	for _, user := range []string{"alice", "bob", "alice", "alice"} {
		_, err := s.Append(ctx, store.HistoryRecord{URL: "u", UserID: user})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.True(t, all[0].Timestamp.After(all[3].Timestamp), "newest first")

	alice, err := s.List(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, alice, 2)
	for _, rec := range alice {
		require.Equal(t, "alice", rec.UserID)
	}
}

func TestHistoryStoreDeleteScopedToUser(t *testing.T) {
	t.Parallel()

	s := NewHistoryStore(nil)
	ctx := context.Background()

	rec, err := s.Append(ctx, store.HistoryRecord{URL: "u", UserID: "alice"})
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, rec.ID, "bob")
	require.NoError(t, err)
	require.False(t, deleted, "another user's records are invisible")

	deleted, err = s.Delete(ctx, rec.ID, "alice")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = s.Delete(ctx, rec.ID, "alice")
	require.NoError(t, err)
	require.False(t, deleted)
}
