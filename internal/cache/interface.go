package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/zenjaura/marketplace/internal/api/middleware"
)

type Cache interface {
	Get(ctx context.Context, key string, value interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	BookKeyPrefix    = "book"
	PackageKeyPrefix = "package"

	ActivePackagesKey = "packages:active"
)

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

// Remember returns the cached value for key or stores the result of load.
// Cache failures are logged and never fail the read.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {

	logger := middleware.LoggerFromContext(ctx)

	var cached T

	found, err := c.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("Cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	if found {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("Cache write failed", slog.String("key", key), slog.Any("error", err))
	}

	return value, nil
}

// Invalidate drops keys, logging failures.
func Invalidate(ctx context.Context, c Cache, keys ...string) {
	for _, key := range keys {
		if err := c.Delete(ctx, key); err != nil {
			middleware.LoggerFromContext(ctx).Warn("Cache invalidation failed", slog.String("key", key), slog.Any("error", err))
		}
	}
}
