package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pawresort/internal/model"
)

// CachedResourceStore wraps a ResourceStore with a short-TTL Redis cache.
// The resource catalog changes rarely and is read on every availability
// screen, so it is safe to cache; availability results themselves are
// never cached.
type CachedResourceStore struct {
	inner ResourceStore
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedResourceStore wraps inner with Redis caching. A nil client or
// non-positive TTL disables caching and passes calls straight through.
func NewCachedResourceStore(inner ResourceStore, redisClient *redis.Client, ttl time.Duration) *CachedResourceStore {
	return &CachedResourceStore{inner: inner, redis: redisClient, ttl: ttl}
}

func (c *CachedResourceStore) ListResources(ctx context.Context, tenantID string) ([]model.Resource, error) {
	cacheKey := fmt.Sprintf("resources:%s", tenantID)

	var resources []model.Resource
	if c.readCache(ctx, cacheKey, &resources) {
		return resources, nil
	}

	resources, err := c.inner.ListResources(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, resources)
	return resources, nil
}

func (c *CachedResourceStore) GetResource(ctx context.Context, tenantID, id string) (*model.Resource, error) {
	cacheKey := fmt.Sprintf("resource:%s:%s", tenantID, id)

	var r model.Resource
	if c.readCache(ctx, cacheKey, &r) {
		return &r, nil
	}

	res, err := c.inner.GetResource(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, res)
	return res, nil
}

func (c *CachedResourceStore) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.ttl <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *CachedResourceStore) writeCache(ctx context.Context, key string, v any) {
	if c.redis == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	// Best effort: a cache write failure never fails the request.
	c.redis.Set(ctx, key, data, c.ttl)
}

var _ ResourceStore = (*CachedResourceStore)(nil)
