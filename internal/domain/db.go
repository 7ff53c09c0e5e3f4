package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Each implementation owns its own migration files and strategy.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}

// KeyValueStore is the local persistent storage the progress mapping is
// mirrored into. A missing key is reported as ErrNotFound.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
