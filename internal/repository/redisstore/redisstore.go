// Package redisstore keeps key-value entries in Redis so several server
// instances can share one progress record set.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/msomdec/vecino-digital/internal/domain"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key, letting several deployments share
	// one Redis database.
	Prefix string
}

// Store implements domain.KeyValueStore on a Redis client.
type Store struct {
	rdb    *goredis.Client
	prefix string
}

// New connects to Redis and pings it before returning.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address: %w", domain.ErrInvalidInput)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewWithClient(rdb, opts.Prefix), nil
}

// NewWithClient wraps an existing client. The store takes ownership and
// closes it on Close.
func NewWithClient(rdb *goredis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

// Set stores value under key with no expiry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
