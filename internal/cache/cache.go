package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/scholarly-labs/resource-indexer/internal/adapter"
	"github.com/scholarly-labs/resource-indexer/internal/domain"
	"github.com/scholarly-labs/resource-indexer/internal/logger"
)

// Key builders. Every read-path cache entry belongs to one of these families
// so invalidation can target exactly the entries a mutation staled.
func ResourceKey(tokenID uint64) string {
	return fmt.Sprintf("resource:%d", tokenID)
}

func ResourceListKey(limit, offset int, sort string) string {
	return fmt.Sprintf("resource:list:%d:%d:%s", limit, offset, sort)
}

func UserResourcesKey(owner string, limit, offset int) string {
	return fmt.Sprintf("resource:user:%s:%d:%d", domain.NormalizeAddress(owner), limit, offset)
}

func MarketListKey(limit, offset int) string {
	return fmt.Sprintf("resource:market:%d:%d", limit, offset)
}

func AccessTokenKey(accessTokenID uint64) string {
	return fmt.Sprintf("access:%d", accessTokenID)
}

func ResourceAccessKey(tokenID uint64) string {
	return fmt.Sprintf("resource:%d:access", tokenID)
}

// Cache is a read-through JSON cache over Redis. Lookups and writes degrade
// to misses on Redis failure so the database stays the source of truth.
//
//go:generate mockgen -source=cache.go -destination=../mocks/cache.go -package=mocks -mock_names=Cache=MockCache
type Cache interface {
	// Get unmarshals the cached value at key into dest, returning false on a
	// miss or any Redis failure
	Get(ctx context.Context, key string, dest any) bool

	// Set stores a JSON-encoded value at key with the configured TTL
	Set(ctx context.Context, key string, value any)

	// InvalidateResource drops every entry staled by a mutation of the given
	// resource: its detail view, its access views and all list views
	InvalidateResource(ctx context.Context, tokenID uint64)

	// InvalidateUserResources drops the per-owner list views for an address
	InvalidateUserResources(ctx context.Context, owner string)

	// InvalidateAccessToken drops an access grant's entry and the access
	// views of the resource it covers
	InvalidateAccessToken(ctx context.Context, accessTokenID, resourceTokenID uint64)

	// Ping checks the Redis connection
	Ping(ctx context.Context) error
}

type redisCache struct {
	client adapter.RedisClient
	json   adapter.JSON
	ttl    time.Duration
}

// NewRedisCache creates a cache with the given entry TTL
func NewRedisCache(client adapter.RedisClient, json adapter.JSON, ttl time.Duration) Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisCache{client: client, json: json, ttl: ttl}
}

// Get unmarshals the cached value at key into dest
func (c *redisCache) Get(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.WarnCtx(ctx, "Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := c.json.Unmarshal([]byte(raw), dest); err != nil {
		logger.WarnCtx(ctx, "Cache entry corrupt, dropping", zap.String("key", key), zap.Error(err))
		if err := c.client.Del(ctx, key); err != nil {
			logger.WarnCtx(ctx, "Cache delete failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	return true
}

// Set stores a JSON-encoded value at key with the configured TTL
func (c *redisCache) Set(ctx context.Context, key string, value any) {
	raw, err := c.json.Marshal(value)
	if err != nil {
		logger.WarnCtx(ctx, "Cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, string(raw), c.ttl); err != nil {
		logger.WarnCtx(ctx, "Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *redisCache) deletePattern(ctx context.Context, pattern string) {
	keys, err := c.client.ScanKeys(ctx, pattern)
	if err != nil {
		logger.WarnCtx(ctx, "Cache scan failed", zap.String("pattern", pattern), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...); err != nil {
		logger.WarnCtx(ctx, "Cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// InvalidateResource drops every entry staled by a mutation of the resource
func (c *redisCache) InvalidateResource(ctx context.Context, tokenID uint64) {
	if err := c.client.Del(ctx, ResourceKey(tokenID), ResourceAccessKey(tokenID)); err != nil {
		logger.WarnCtx(ctx, "Cache invalidation failed", zap.Uint64("tokenID", tokenID), zap.Error(err))
	}

	// List views can contain the resource at any page, drop them all
	c.deletePattern(ctx, "resource:list:*")
	c.deletePattern(ctx, "resource:market:*")
}

// InvalidateUserResources drops the per-owner list views for an address
func (c *redisCache) InvalidateUserResources(ctx context.Context, owner string) {
	c.deletePattern(ctx, fmt.Sprintf("resource:user:%s:*", domain.NormalizeAddress(owner)))
}

// InvalidateAccessToken drops an access grant's entry and its resource's
// access views
func (c *redisCache) InvalidateAccessToken(ctx context.Context, accessTokenID, resourceTokenID uint64) {
	if err := c.client.Del(ctx,
		AccessTokenKey(accessTokenID),
		ResourceAccessKey(resourceTokenID)); err != nil {
		logger.WarnCtx(ctx, "Cache invalidation failed",
			zap.Uint64("accessTokenID", accessTokenID), zap.Error(err))
	}
}

// Ping checks the Redis connection
func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}
