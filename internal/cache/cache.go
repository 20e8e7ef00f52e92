// Package cache keeps computed analytics in Redis. Every key embeds the
// catalog fingerprint and the current submissions version, so bumping the
// version or loading a different catalog invalidates all cached results at
// once. A Cache built without a client does nothing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/GregMSThompson/imihigo-backend/internal/errs"
)

const (
	prefix     = "imihigo"
	versionKey = prefix + ":submissions:version"
)

var ErrLocked = errors.New("cache: lock held elsewhere")

type Cache struct {
	client    redis.UniversalClient
	locker    *redislock.Client
	ttl       time.Duration
	namespace string
}

// New builds a cache whose versioned keys live under namespace, normally the
// catalog fingerprint.
func New(client redis.UniversalClient, ttl time.Duration, namespace string) *Cache {
	c := &Cache{client: client, ttl: ttl, namespace: namespace}
	if client != nil {
		c.locker = redislock.New(client)
	}
	return c
}

func (c *Cache) Enabled() bool { return c != nil && c.client != nil }

// Key joins parts into a namespaced key.
func Key(parts ...string) string {
	return prefix + ":" + strings.Join(parts, ":")
}

// Version returns the current submissions version, 0 when none was recorded.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	v, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errs.NewExternalServiceError("redis", true, err)
	}
	return v, nil
}

// Invalidate bumps the submissions version.
func (c *Cache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return errs.NewExternalServiceError("redis", true, err)
	}
	return nil
}

// VersionedKey prefixes parts with the namespace and the current submissions
// version.
func (c *Cache) VersionedKey(ctx context.Context, parts ...string) (string, error) {
	v, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	prefix := []string{"v" + strconv.FormatInt(v, 10)}
	if c != nil && c.namespace != "" {
		prefix = append([]string{"c" + c.namespace}, prefix...)
	}
	return Key(append(prefix, parts...)...), nil
}

func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errs.NewExternalServiceError("redis", true, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return errs.NewExternalServiceError("redis", true, err)
	}
	return nil
}

// Lock takes a short-lived distributed lock on name. Without Redis it always
// succeeds. The returned func releases the lock.
func (c *Cache) Lock(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	if !c.Enabled() {
		return func() {}, nil
	}
	lock, err := c.locker.Obtain(ctx, Key("lock", name), ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, errs.NewExternalServiceError("redis", true, err)
	}
	return func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}, nil
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
