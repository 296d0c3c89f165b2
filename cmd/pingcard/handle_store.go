package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pingcard/pingcard/internal/config"
	"github.com/pingcard/pingcard/internal/publish"
	"github.com/pingcard/pingcard/internal/publish/pgstore"
	"github.com/pingcard/pingcard/internal/publish/redisstore"
)

// openHandleStore returns the configured handle store and a func releasing its connections.
func openHandleStore(ctx context.Context, cfg config.Config) (publish.HandleStore, func(), error) {
	switch cfg.HandleStore {
	case config.HandleStorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		return pgstore.New(pool), pool.Close, nil

	case config.HandleStoreRedis:
		client, err := redisstore.NewClient(cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return redisstore.New(client, ""), func() { _ = client.Close() }, nil

	case config.HandleStoreMemory, "":
		return publish.NewMemoryHandles(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown handle store %q", cfg.HandleStore)
}
