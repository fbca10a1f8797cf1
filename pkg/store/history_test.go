package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHistory(t *testing.T) *History {
	t.Helper()
	h, err := NewHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestHistoryRecordAndRecent(t *testing.T) {
	h := testHistory(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	for i, query := range []string{"first", "second", "third"} {
		err := h.Record(ctx, SearchRun{
			ID:         uuid.New().String(),
			Query:      query,
			Filename:   "tweets_" + query + ".json",
			TweetCount: (i + 1) * 10,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	runs, err := h.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "third", runs[0].Query)
	assert.Equal(t, 30, runs[0].TweetCount)
	assert.Equal(t, "second", runs[1].Query)
}

func TestHistoryRecentEmpty(t *testing.T) {
	h := testHistory(t)

	runs, err := h.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestHistoryDefaultLimit(t *testing.T) {
	h := testHistory(t)

	runs, err := h.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
