package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarly-labs/resource-indexer/internal/adapter"
	"github.com/scholarly-labs/resource-indexer/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	m.Run()
}

// fakeRedis is an in-memory RedisClient. failing makes every call error to
// exercise the degrade paths.
type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	failing bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Ping(ctx context.Context) error {
	if f.failing {
		return errors.New("connection refused")
	}
	return nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return "", errors.New("connection refused")
	}
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("connection refused")
	}
	f.data[key] = value
	return nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("connection refused")
	}
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeRedis) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.New("connection refused")
	}
	var keys []string
	for key := range f.data {
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *fakeRedis) Close() error { return nil }

type cachedResource struct {
	TokenID uint64 `json:"token_id"`
	Title   string `json:"title"`
}

func newTestCache(client adapter.RedisClient) Cache {
	return NewRedisCache(client, adapter.NewJSON(), time.Minute)
}

func TestCacheRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	c := newTestCache(fake)
	ctx := context.Background()

	var got cachedResource
	assert.False(t, c.Get(ctx, ResourceKey(1), &got))

	c.Set(ctx, ResourceKey(1), cachedResource{TokenID: 1, Title: "Paper"})
	require.True(t, c.Get(ctx, ResourceKey(1), &got))
	assert.Equal(t, uint64(1), got.TokenID)
	assert.Equal(t, "Paper", got.Title)
}

func TestCacheCorruptEntryDropped(t *testing.T) {
	fake := newFakeRedis()
	c := newTestCache(fake)
	ctx := context.Background()

	fake.data[ResourceKey(2)] = "{not json"

	var got cachedResource
	assert.False(t, c.Get(ctx, ResourceKey(2), &got))
	_, stillThere := fake.data[ResourceKey(2)]
	assert.False(t, stillThere)
}

func TestCacheDegradesOnFailure(t *testing.T) {
	fake := newFakeRedis()
	c := newTestCache(fake)
	ctx := context.Background()

	fake.failing = true

	var got cachedResource
	assert.False(t, c.Get(ctx, ResourceKey(3), &got))
	c.Set(ctx, ResourceKey(3), cachedResource{TokenID: 3})
	c.InvalidateResource(ctx, 3)
	assert.Error(t, c.Ping(ctx))
}

func TestInvalidateResource(t *testing.T) {
	fake := newFakeRedis()
	c := newTestCache(fake)
	ctx := context.Background()

	c.Set(ctx, ResourceKey(4), cachedResource{TokenID: 4})
	c.Set(ctx, ResourceAccessKey(4), []cachedResource{})
	c.Set(ctx, ResourceListKey(10, 0, "asc"), []cachedResource{{TokenID: 4}})
	c.Set(ctx, MarketListKey(10, 0), []cachedResource{{TokenID: 4}})
	c.Set(ctx, ResourceKey(5), cachedResource{TokenID: 5})

	c.InvalidateResource(ctx, 4)

	var got cachedResource
	assert.False(t, c.Get(ctx, ResourceKey(4), &got))
	var list []cachedResource
	assert.False(t, c.Get(ctx, ResourceListKey(10, 0, "asc"), &list))
	assert.False(t, c.Get(ctx, MarketListKey(10, 0), &list))

	// Unrelated detail entries survive
	assert.True(t, c.Get(ctx, ResourceKey(5), &got))
}

func TestInvalidateUserResources(t *testing.T) {
	fake := newFakeRedis()
	c := newTestCache(fake)
	ctx := context.Background()

	owner := "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	c.Set(ctx, UserResourcesKey(owner, 10, 0), []cachedResource{{TokenID: 1}})
	c.Set(ctx, UserResourcesKey("0xbb", 10, 0), []cachedResource{{TokenID: 2}})

	c.InvalidateUserResources(ctx, owner)

	var list []cachedResource
	assert.False(t, c.Get(ctx, UserResourcesKey(owner, 10, 0), &list))
	assert.True(t, c.Get(ctx, UserResourcesKey("0xbb", 10, 0), &list))
}

func TestInvalidateAccessToken(t *testing.T) {
	fake := newFakeRedis()
	c := newTestCache(fake)
	ctx := context.Background()

	c.Set(ctx, AccessTokenKey(500), cachedResource{TokenID: 500})
	c.Set(ctx, ResourceAccessKey(10), []cachedResource{})

	c.InvalidateAccessToken(ctx, 500, 10)

	var got cachedResource
	assert.False(t, c.Get(ctx, AccessTokenKey(500), &got))
	var list []cachedResource
	assert.False(t, c.Get(ctx, ResourceAccessKey(10), &list))
}
