package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/vecino-digital/internal/domain"
)

// KeyValueStore implements domain.KeyValueStore on the kv_entries table.
type KeyValueStore struct {
	db    *sql.DB
	owner *DB
}

// NewKeyValueStore creates a new SQLite-backed KeyValueStore.
func NewKeyValueStore(db *DB) *KeyValueStore {
	return &KeyValueStore{db: db.SqlDB, owner: db}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_entries WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get kv entry: %w", err)
	}
	return value, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set kv entry: %w", err)
	}
	return nil
}

// Close closes the database the store lives in.
func (s *KeyValueStore) Close() error {
	return s.owner.Close()
}
