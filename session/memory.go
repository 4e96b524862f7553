package session

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store. It backs the transient session-scoped
// storage and doubles as a test store.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemStore constructs an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *MemStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *MemStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete removes key.
func (s *MemStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Clear removes every key.
func (s *MemStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	return nil
}

// Len reports the number of stored keys.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
