package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

// Cache is a tiny get/set surface over redis. ErrMiss is returned for absent
// keys so callers can fall through to the source of truth.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var ErrMiss = fmt.Errorf("cache: miss")

type redisCache struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewRedis dials the given address and verifies connectivity before use.
func NewRedis(baseLog *logger.Logger, addr string) (Cache, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisCache{
		log: baseLog.With("service", "RedisCache"),
		rdb: rdb,
	}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return raw, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

func (c *redisCache) Close() error {
	return c.rdb.Close()
}

// NewNoop backs deployments without redis; every read misses.
func NewNoop() Cache { return noopCache{} }

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }
func (noopCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (noopCache) Delete(context.Context, string) error { return nil }
func (noopCache) Close() error                         { return nil }
