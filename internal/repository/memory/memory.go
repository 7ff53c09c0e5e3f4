// Package memory provides an in-process key-value store for tests and
// ephemeral runs where progress should not outlive the process.
package memory

import (
	"context"
	"sync"

	"github.com/msomdec/vecino-digital/internal/domain"
)

// Store implements domain.KeyValueStore with a map.
type Store struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

// New returns an empty store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.writes++
	return nil
}

// Writes returns how many Set calls the store has served.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Store) Close() error { return nil }
