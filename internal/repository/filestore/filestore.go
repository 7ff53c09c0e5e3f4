// Package filestore keeps key-value entries in a single JSON file on disk,
// the way a browser keeps localStorage for a page.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/msomdec/vecino-digital/internal/domain"
)

// Store implements domain.KeyValueStore over a JSON object file.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a store writing to path. The parent directory is created on
// the first write.
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readLocked()
	if err != nil {
		return "", err
	}
	v, ok := entries[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

// Set replaces the value under key, rewriting the file atomically.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readLocked()
	if err != nil {
		// An unreadable file is replaced rather than blocking every write.
		entries = make(map[string]string)
	}
	entries[key] = value

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".progress-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

func (s *Store) readLocked() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	entries := make(map[string]string)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	return entries, nil
}

func (s *Store) Close() error { return nil }
