// Package repository selects the key-value backend progress is stored in.
package repository

import (
	"context"
	"fmt"

	"github.com/msomdec/vecino-digital/internal/config"
	"github.com/msomdec/vecino-digital/internal/domain"
	"github.com/msomdec/vecino-digital/internal/repository/filestore"
	"github.com/msomdec/vecino-digital/internal/repository/memory"
	"github.com/msomdec/vecino-digital/internal/repository/redisstore"
	"github.com/msomdec/vecino-digital/internal/repository/sqlite"
)

// Open returns the store named by cfg.Driver, migrated and ready for use.
// The caller closes it.
func Open(ctx context.Context, cfg config.Storage) (domain.KeyValueStore, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := migrate(ctx, db); err != nil {
			return nil, err
		}
		return db.KeyValues(), nil
	case config.DriverFile:
		return filestore.New(cfg.FilePath), nil
	case config.DriverRedis:
		rs, err := redisstore.New(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return rs, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q: %w", cfg.Driver, domain.ErrInvalidInput)
	}
}

func migrate(ctx context.Context, db domain.Database) error {
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
