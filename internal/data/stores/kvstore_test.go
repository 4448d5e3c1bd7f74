package stores

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskgraph/internal/core/kv"
	"github.com/colonyops/taskgraph/internal/core/kv/kvtest"
	"github.com/colonyops/taskgraph/internal/data/db"
)

func newTestKVStore(t *testing.T) *KVStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewKVStore(database)
}

func TestKVStore_Contract(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.KV {
		return newTestKVStore(t)
	})
}

func TestKVStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	require.NoError(t, NewKVStore(database).Set(ctx, "graph:state", map[string]string{"current": "default"}))
	require.NoError(t, database.Close())

	database, err = db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	var got map[string]string
	require.NoError(t, NewKVStore(database).Get(ctx, "graph:state", &got))
	assert.Equal(t, "default", got["current"])
}

func TestKVStore_GetUndecodable(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	require.NoError(t, store.Set(ctx, "key", "a string"))

	var n int
	err := store.Get(ctx, "key", &n)
	require.Error(t, err)
	assert.False(t, kv.IsNotFound(err))
}

func TestWithBusyRetry_NonBusyErrorReturnsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("boom")

	err := withBusyRetry(context.Background(), func() error {
		calls++
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
