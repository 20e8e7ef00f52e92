package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GregMSThompson/imihigo-backend/internal/cache"
	"github.com/GregMSThompson/imihigo-backend/internal/config"
)

const redisPingTimeout = 5 * time.Second

// InitCache connects to Redis when an address is configured. Without one the
// returned cache is disabled. Keys are scoped to namespace.
func InitCache(ctx context.Context, cfg *config.Config, namespace string) (*cache.Cache, error) {
	if !cfg.CacheEnabled() {
		return cache.New(nil, cfg.CacheTTL, namespace), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	return cache.New(client, cfg.CacheTTL, namespace), nil
}
