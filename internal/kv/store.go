// Package kv is the durable key-value layer behind every local record the
// app keeps: one named JSON blob per record, overwritten unconditionally.
package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/psytech/suvichar/internal/config"
	"github.com/psytech/suvichar/internal/infra"
)

// ErrNotFound is returned by Get when no record exists under the key.
var ErrNotFound = errors.New("record not found")

// Store persists opaque values under fixed names.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Open builds the Store selected by cfg.StorageDriver. The returned close
// function releases the underlying connection and is never nil.
func Open(ctx context.Context, cfg config.Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case config.StorageMemory:
		return NewMemoryStore(), noop, nil
	case config.StorageSQLite:
		db, err := infra.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return NewSQLiteStore(db), db.Close, nil
	case config.StorageRedis:
		client, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisStore(client, DefaultRedisPrefix), client.Close, nil
	case config.StoragePostgres:
		pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return NewPostgresStore(pool), func() error { pool.Close(); return nil }, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
