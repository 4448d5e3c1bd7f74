// Package kvtest holds a behavioral test suite shared by every kv.KV backend.
package kvtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskgraph/internal/core/kv"
)

// Run exercises the kv.KV contract against stores produced by newStore. Each
// subtest receives a fresh, empty store.
func Run(t *testing.T, newStore func(t *testing.T) kv.KV) {
	t.Helper()

	t.Run("SetAndGet", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		type payload struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}

		require.NoError(t, store.Set(ctx, "test-key", payload{Name: "hello", Value: 42}))

		var got payload
		require.NoError(t, store.Get(ctx, "test-key", &got))
		assert.Equal(t, "hello", got.Name)
		assert.Equal(t, 42, got.Value)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		store := newStore(t)

		var v string
		err := store.Get(context.Background(), "nonexistent", &v)
		require.ErrorIs(t, err, kv.ErrNotFound)
		assert.True(t, kv.IsNotFound(err))
	})

	t.Run("SetOverwrite", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		require.NoError(t, store.Set(ctx, "key", "first"))
		require.NoError(t, store.Set(ctx, "key", "second"))

		var got string
		require.NoError(t, store.Get(ctx, "key", &got))
		assert.Equal(t, "second", got)
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		require.NoError(t, store.Set(ctx, "key", "value"))
		require.NoError(t, store.Delete(ctx, "key"))

		has, err := store.Has(ctx, "key")
		require.NoError(t, err)
		assert.False(t, has)

		// Deleting a missing key is not an error.
		require.NoError(t, store.Delete(ctx, "key"))
	})

	t.Run("Has", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		has, err := store.Has(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, store.Set(ctx, "exists", true))
		has, err = store.Has(ctx, "exists")
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("ListKeys", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		keys, err := store.ListKeys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)

		require.NoError(t, store.Set(ctx, "b", 1))
		require.NoError(t, store.Set(ctx, "a", 2))
		require.NoError(t, store.Set(ctx, "c", 3))

		keys, err = store.ListKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, keys)
	})

	t.Run("Scoped", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		typed := kv.Scoped[[]int](store, "nums")

		_, ok, err := typed.Get(ctx, "primes")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, typed.Set(ctx, "primes", []int{2, 3, 5}))

		got, ok, err := typed.Get(ctx, "primes")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []int{2, 3, 5}, got)

		has, err := store.Has(ctx, "nums:primes")
		require.NoError(t, err)
		assert.True(t, has, "scoped keys carry the namespace prefix")

		require.NoError(t, store.Set(ctx, "other:primes", 1))
		keys, err := typed.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"primes"}, keys)

		require.NoError(t, typed.Delete(ctx, "primes"))
		has, err = typed.Has(ctx, "primes")
		require.NoError(t, err)
		assert.False(t, has)
	})
}
