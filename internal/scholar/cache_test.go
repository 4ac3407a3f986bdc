package scholar

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGet(t *testing.T) {
	cache, err := NewCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "dblp", "a study of cats")
	require.NoError(t, err)
	assert.False(t, ok, "empty cache has no entry")

	want := &Match{Source: "dblp", Title: "A Study of Cats", Confidence: ConfidenceHigh, URL: "https://dblp.org/1"}
	require.NoError(t, cache.Put(ctx, "dblp", "a study of cats", want))

	got, ok, err := cache.Get(ctx, "dblp", "a study of cats")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestCacheNegativeResult(t *testing.T) {
	cache, err := NewCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, "dblp", "unknown paper", nil))

	m, ok, err := cache.Get(ctx, "dblp", "unknown paper")
	require.NoError(t, err)
	assert.True(t, ok, "negative result is still a cache hit")
	assert.Nil(t, m)
}

func TestCacheKeyedBySource(t *testing.T) {
	cache, err := NewCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, "dblp", "q", &Match{Source: "dblp", Title: "T"}))

	_, ok, err := cache.Get(ctx, "crossref", "q")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachePersistsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "lookups.db")

	cache, err := NewCache(path)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, "arxiv", "1706.03762", &Match{Source: "arxiv", Title: "T"}))
	require.NoError(t, cache.Close())

	reopened, err := NewCache(path)
	require.NoError(t, err)
	defer reopened.Close()

	m, ok, err := reopened.Get(ctx, "arxiv", "1706.03762")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "T", m.Title)
}

func TestCachePrune(t *testing.T) {
	cache, err := NewCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, "dblp", "fresh", &Match{Source: "dblp", Title: "T"}))

	// Nothing is older than an hour yet.
	n, err := cache.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	// A zero max age expires everything written before now.
	time.Sleep(1100 * time.Millisecond)
	n, err = cache.Prune(ctx, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
