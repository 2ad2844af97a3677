// Package cache keeps read models and rate limit counters in Redis. Values
// are stored as JSON, except plain strings which are stored as is.
package cache

//go:generate go run go.uber.org/mock/mockgen -source=./cache.go -destination=./mocks/cache_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"crm/infras/otel"
)

const (
	otelScopeName = "cache"
	otelKeyAttr   = "cache.key"

	// Nil is returned by Get on a miss.
	Nil = redis.Nil
)

type RedisCache interface {
	Save(ctx context.Context, key string, value any, duration int) (err error)
	Get(ctx context.Context, key string, value any) (err error)
	Delete(ctx context.Context, key string) error
	// Clear removes every key matching the glob pattern.
	Clear(ctx context.Context, pattern string) error
	Increment(ctx context.Context, key string, duration int) (count int64, err error)
}

type redisCache struct {
	client *redis.Client
	otel   otel.Otel
}

func NewRedisCache(client *redis.Client, ot otel.Otel) RedisCache {
	return &redisCache{
		client: client,
		otel:   ot,
	}
}

func (c *redisCache) scope(ctx context.Context, op, key string) (context.Context, otel.Scope) {
	ctx, scope := c.otel.NewScope(ctx, otelScopeName, otelScopeName+"."+op)
	scope.SetAttribute(otelKeyAttr, key)

	return ctx, scope
}

func ttl(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func (c *redisCache) Clear(ctx context.Context, pattern string) (err error) {
	ctx, scope := c.scope(ctx, "Clear", pattern)
	defer scope.End()
	defer scope.TraceIfError(&err)

	var keys []string

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err = iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", pattern, err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err = c.client.Del(ctx, keys...).Err(); err != nil {
		log.Error().Err(err).Str("pattern", pattern).Int("keys", len(keys)).Msg("failed to clear cache")

		return fmt.Errorf("del %d keys: %w", len(keys), err)
	}

	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) (err error) {
	ctx, scope := c.scope(ctx, "Delete", key)
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = c.client.Del(ctx, key).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete cache")

		return fmt.Errorf("del %s: %w", key, err)
	}

	return nil
}

// Get decodes the value under key into value, which must be a pointer. A miss
// returns an error wrapping Nil.
func (c *redisCache) Get(ctx context.Context, key string, value any) (err error) {
	ctx, scope := c.scope(ctx, "Get", key)
	defer scope.End()

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}

	if s, ok := value.(*string); ok {
		*s = string(raw)

		return nil
	}

	if err = json.Unmarshal(raw, value); err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("key", key).Msg("undecodable cache entry")

		return fmt.Errorf("decode %s: %w", key, err)
	}

	return nil
}

func (c *redisCache) Save(ctx context.Context, key string, value any, duration int) (err error) {
	ctx, scope := c.scope(ctx, "Save", key)
	defer scope.End()
	defer scope.TraceIfError(&err)

	var raw []byte

	if s, ok := value.(string); ok {
		raw = []byte(s)
	} else if raw, err = json.Marshal(value); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err = c.client.Set(ctx, key, raw, ttl(duration)).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to save cache")

		return fmt.Errorf("set %s: %w", key, err)
	}

	return nil
}

// Increment bumps the counter under key. The expiry is only set when the
// counter is created, so the window does not slide with every hit.
func (c *redisCache) Increment(ctx context.Context, key string, duration int) (count int64, err error) {
	ctx, scope := c.scope(ctx, "Increment", key)
	defer scope.End()
	defer scope.TraceIfError(&err)

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl(duration))

	if _, err = pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}

	return incr.Val(), nil
}

// Remember returns the cached value under key, or calls load and stores its
// result for ttl seconds in the background. Load errors are never cached.
func Remember[T any](ctx context.Context, cache RedisCache, key string, ttl int, load func(ctx context.Context) (T, error)) (T, error) {
	var res T

	if err := cache.Get(ctx, key, &res); err == nil {
		return res, nil
	}

	res, err := load(ctx)
	if err != nil {
		return res, err
	}

	go func(ctx context.Context) {
		if err := cache.Save(ctx, key, res, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to fill cache")
		}
	}(context.WithoutCancel(ctx))

	return res, nil
}
