package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storedReport struct {
	Mode      string `json:"mode"`
	Timestamp int64  `json:"timestamp"`
}

func TestMemorySessionStore_ScopesByUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	require.NoError(t, store.Set(ctx, "alice", KeyLastReport, []byte(`{"mode":"mcq"}`)))

	data, err := store.Get(ctx, "alice", KeyLastReport)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"mcq"}`, string(data))

	_, err = store.Get(ctx, "bob", KeyLastReport)
	assert.ErrorIs(t, err, ErrNotStored)

	require.NoError(t, store.Clear(ctx, "alice", KeyLastReport))
	_, err = store.Get(ctx, "alice", KeyLastReport)
	assert.ErrorIs(t, err, ErrNotStored)
}

func TestLoadJSON(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	_, ok := LoadJSON[storedReport](ctx, store, "alice", KeyLastReport)
	assert.False(t, ok, "missing key")

	require.NoError(t, SaveJSON(ctx, store, "alice", KeyLastReport, storedReport{Mode: "quiz", Timestamp: 42}))
	got, ok := LoadJSON[storedReport](ctx, store, "alice", KeyLastReport)
	require.True(t, ok)
	assert.Equal(t, storedReport{Mode: "quiz", Timestamp: 42}, *got)

	require.NoError(t, store.Set(ctx, "alice", KeyLastReport, []byte(`{"mode":`)))
	got, ok = LoadJSON[storedReport](ctx, store, "alice", KeyLastReport)
	assert.False(t, ok, "malformed JSON reads as nothing stored")
	assert.Nil(t, got)

	require.NoError(t, store.Set(ctx, "alice", KeyLocalAttempts, []byte(`not json`)))
	list, ok := LoadJSON[[]storedReport](ctx, store, "alice", KeyLocalAttempts)
	assert.False(t, ok)
	assert.Nil(t, list)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "progress:stats:alice", map[string]int{"n": 1}, time.Minute))
	require.NoError(t, c.Set(ctx, "progress:stats:bob", map[string]int{"n": 2}, 0))

	var got map[string]int
	require.NoError(t, c.Get(ctx, "progress:stats:alice", &got))
	assert.Equal(t, 1, got["n"])

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "progress:stats:alice", &got), ErrCacheMiss)

	require.NoError(t, c.DeletePattern(ctx, "progress:stats:*"))
	assert.ErrorIs(t, c.Get(ctx, "progress:stats:bob", &got), ErrCacheMiss)
}
