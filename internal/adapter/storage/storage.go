// Package storage wires the configured store backend.
package storage

import (
	"context"
	"fmt"

	"walletstore/config"
	pgStorage "walletstore/internal/adapter/storage/postgres"
	redisStorage "walletstore/internal/adapter/storage/redis"
	"walletstore/internal/core/ports"
	"walletstore/pkg/logger"

	"github.com/rs/zerolog"
)

// Backend is an opened store plus the Redis-side helpers that came with it.
type Backend struct {
	Store ports.HashStore
	// Queue and Source are nil when no queue name is configured. Both are
	// backed by the same Redis list.
	Queue  ports.ReceiptQueue
	Source ports.ReceiptSource
	// RateLimit is nil when no Redis connection is open.
	RateLimit      *redisStorage.RateLimitStore
	HealthCheckers []ports.HealthChecker

	closers []func()
}

// Close releases every connection opened by Open, newest first.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// Open connects the store selected by cfg.Store.Driver. A Redis connection
// is opened for the redis driver and, with any driver, whenever a receipt
// queue is configured.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	b := &Backend{}

	needRedis := cfg.Store.Driver == "redis" || cfg.Store.Queue != ""
	var redisStore *redisStorage.HashStore
	if needRedis {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, logger.Component(log, "redis"))
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = rdb.Close() })
		b.RateLimit = redisStorage.NewRateLimitStore(rdb, cfg.Store.Prefix)

		redisStore = redisStorage.NewHashStore(rdb, cfg.Store.Prefix)
		var q *redisStorage.ReceiptQueue
		if cfg.Store.Queue != "" {
			q = redisStorage.NewReceiptQueue(rdb, redisStore.Key(cfg.Store.Queue))
			b.Queue = q
			b.Source = q
		}
		b.HealthCheckers = append(b.HealthCheckers, redisStorage.NewHealthCheck(rdb, q))
	}

	switch cfg.Store.Driver {
	case "redis":
		b.Store = redisStore
	case "postgres":
		pool, err := pgStorage.NewPool(ctx, cfg.Database, logger.Component(log, "postgres"))
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		if err := pgStorage.Migrate(ctx, pool); err != nil {
			b.Close()
			return nil, err
		}
		b.HealthCheckers = append(b.HealthCheckers, pgStorage.NewHealthCheck(pool))
		b.Store = pgStorage.NewHashStore(pool, cfg.Store.Prefix)
	default:
		b.Close()
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}

	log.Info().
		Str("driver", cfg.Store.Driver).
		Str("prefix", cfg.Store.Prefix).
		Bool("queue", b.Queue != nil).
		Msg("Store opened")

	return b, nil
}
