// Package memstore implements storage.Repository in memory.
package memstore

import (
	"context"
	"sort"
	"sync"

	"todo/internal/storage"
)

// Store is an in-memory storage.Repository. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get implements storage.Repository.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put implements storage.Repository.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = v
	return nil
}

// Delete implements storage.Repository.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List implements storage.Repository.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
