package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/autocommit/autocommit/internal/api"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func entry(id, path string, freq int) *api.ScheduleEntry {
	return &api.ScheduleEntry{
		ID:               id,
		RepositoryPath:   path,
		FrequencyMinutes: freq,
		CreatedAt:        time.Now().UTC(),
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateEntry(ctx, entry("one", "/repo/a", 10)))

	got, err := s.GetEntry(ctx, "/repo/a")
	require.NoError(t, err)
	require.Equal(t, "one", got.ID)
	require.Equal(t, 10, got.FrequencyMinutes)

	require.NoError(t, s.DeleteEntry(ctx, "/repo/a"))

	_, err = s.GetEntry(ctx, "/repo/a")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteDuplicatePath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateEntry(ctx, entry("one", "/repo/a", 10)))

	err := s.CreateEntry(ctx, entry("two", "/repo/a", 5))
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestSQLiteDeleteNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteEntry(context.Background(), "/repo/missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateEntry(ctx, entry("one", "/repo/c", 1)))
	require.NoError(t, s.CreateEntry(ctx, entry("two", "/repo/a", 2)))
	require.NoError(t, s.CreateEntry(ctx, entry("three", "/repo/b", 3)))

	entries, err := s.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "/repo/c", entries[0].RepositoryPath)
	require.Equal(t, "/repo/a", entries[1].RepositoryPath)
	require.Equal(t, "/repo/b", entries[2].RepositoryPath)
}

func TestSQLiteListEmpty(t *testing.T) {
	s := newTestStore(t)

	entries, err := s.ListEntries(context.Background())
	require.NoError(t, err)
	require.Empty(t, entries)
}
