package chains

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T, path string) *VisitStore {
	t.Helper()
	s, err := OpenVisitStore(context.Background(), path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestVisitStoreToggle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "nested", "visits.db"))

	visited, err := s.Visited(ctx, "kc")
	require.NoError(t, err)
	assert.Empty(t, visited)

	on, err := s.Toggle(ctx, "kc", "a")
	require.NoError(t, err)
	assert.True(t, on)
	_, err = s.Toggle(ctx, "other", "a")
	require.NoError(t, err)

	visited, err = s.Visited(ctx, "kc")
	require.NoError(t, err)
	assert.Equal(t, Visited{"a": true}, visited)

	on, err = s.Toggle(ctx, "kc", "a")
	require.NoError(t, err)
	assert.False(t, on)

	visited, err = s.Visited(ctx, "kc")
	require.NoError(t, err)
	assert.Empty(t, visited)

	visited, err = s.Visited(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, Visited{"a": true}, visited, "chains are kept apart")
}

func TestVisitStoreRows(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "visits.db"))
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	for _, id := range []string{"b", "a"} {
		_, err := s.Toggle(ctx, "kc", id)
		require.NoError(t, err)
	}

	rows, err := s.Visits(ctx, "kc")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].Location)
	assert.Equal(t, "a", rows[1].Location)
	assert.True(t, rows[0].VisitedAt.Before(rows[1].VisitedAt))
	for _, r := range rows {
		_, err := uuid.Parse(r.ID)
		assert.NoError(t, err)
	}
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
}

func TestVisitStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "visits.db")

	s, err := OpenVisitStore(ctx, path, nil)
	require.NoError(t, err)
	_, err = s.Toggle(ctx, "kc", "a")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s = openTestStore(t, path)
	visited, err := s.Visited(ctx, "kc")
	require.NoError(t, err)
	assert.True(t, visited["a"])
	assert.Equal(t, path, s.Path())
}

func TestVisitStoreClosed(t *testing.T) {
	s, err := OpenVisitStore(context.Background(), filepath.Join(t.TempDir(), "visits.db"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Toggle(context.Background(), "kc", "a")
	assert.Error(t, err)
}
