// Package jsonfile provides a kv.KV backend persisted as a single JSON file.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/colonyops/taskgraph/internal/core/kv"
)

// File is the root JSON structure stored on disk.
type File struct {
	Entries map[string]json.RawMessage `json:"entries"`
}

// KVStore implements kv.KV using a JSON file for persistence. Every write
// rewrites the whole file atomically.
type KVStore struct {
	path string
	mu   sync.RWMutex
}

var _ kv.KV = (*KVStore)(nil)

// NewKVStore creates a new JSON file store at the given path. The file is
// created on first write.
func NewKVStore(path string) *KVStore {
	return &KVStore{path: path}
}

// Get retrieves and deserializes a value by key.
func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return fmt.Errorf("kv get %q: %w", key, err)
	}

	raw, ok := file.Entries[key]
	if !ok {
		return fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

// Set stores a value.
func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}

	file.Entries[key] = data
	if err := s.save(file); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}

	if _, ok := file.Entries[key]; !ok {
		return nil
	}

	delete(file.Entries, key)
	if err := s.save(file); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// Has returns whether a key exists.
func (s *KVStore) Has(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return false, fmt.Errorf("kv has %q: %w", key, err)
	}

	_, ok := file.Entries[key]
	return ok, nil
}

// ListKeys returns all keys in sorted order.
func (s *KVStore) ListKeys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}

	keys := make([]string, 0, len(file.Entries))
	for k := range file.Entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// load reads the store file from disk.
// Returns an empty File if the file doesn't exist.
func (s *KVStore) load() (File, error) {
	empty := File{Entries: map[string]json.RawMessage{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return File{}, err
	}

	if len(data) == 0 {
		return empty, nil
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if file.Entries == nil {
		file.Entries = map[string]json.RawMessage{}
	}

	return file, nil
}

// save writes the store file to disk atomically.
func (s *KVStore) save(file File) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
