package kv

import (
	"context"
	"strings"
)

// TypedKV is a view of a KV store holding values of one type under a shared
// "namespace:" key prefix.
type TypedKV[T any] struct {
	store  KV
	prefix string
}

// Scoped returns the namespace view of store.
func Scoped[T any](store KV, namespace string) *TypedKV[T] {
	return &TypedKV[T]{store: store, prefix: namespace + ":"}
}

// Get decodes the value at key. found is false, with a nil error, when the
// key does not exist.
func (t *TypedKV[T]) Get(ctx context.Context, key string) (v T, found bool, err error) {
	err = t.store.Get(ctx, t.prefix+key, &v)
	switch {
	case err == nil:
		return v, true, nil
	case IsNotFound(err):
		return v, false, nil
	default:
		return v, false, err
	}
}

func (t *TypedKV[T]) Set(ctx context.Context, key string, value T) error {
	return t.store.Set(ctx, t.prefix+key, value)
}

func (t *TypedKV[T]) Delete(ctx context.Context, key string) error {
	return t.store.Delete(ctx, t.prefix+key)
}

func (t *TypedKV[T]) Has(ctx context.Context, key string) (bool, error) {
	return t.store.Has(ctx, t.prefix+key)
}

// Keys returns the keys inside the namespace with the prefix removed.
func (t *TypedKV[T]) Keys(ctx context.Context) ([]string, error) {
	all, err := t.store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, k := range all {
		if rest, ok := strings.CutPrefix(k, t.prefix); ok {
			keys = append(keys, rest)
		}
	}
	return keys, nil
}
