package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "ecomap:catalog:all"

// CachedClient keeps the unfiltered catalog in Redis. Filtered queries, and
// every query when Redis is unreachable, go straight to the next client.
type CachedClient struct {
	next  Client
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedClient(next Client, redisClient *redis.Client, ttl time.Duration) *CachedClient {
	return &CachedClient{next: next, redis: redisClient, ttl: ttl}
}

func (c *CachedClient) Fetch(ctx context.Context, q Query) (Response, error) {
	if c.redis == nil || !q.IsZero() || c.ttl <= 0 {
		return c.next.Fetch(ctx, q)
	}

	if locations, ok := c.lookup(ctx); ok {
		return Response{Success: true, Data: locations}, nil
	}

	resp, err := c.next.Fetch(ctx, q)
	if !Usable(resp, err) {
		return resp, err
	}
	payload, mErr := json.Marshal(resp.Data)
	if mErr == nil {
		if sErr := c.redis.Set(ctx, cacheKey, payload, c.ttl).Err(); sErr != nil {
			log.Printf("catalog: cache store failed: %v", sErr)
		}
	}
	return resp, nil
}

// Invalidate drops the cached catalog.
func (c *CachedClient) Invalidate(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Del(ctx, cacheKey).Err()
}

func (c *CachedClient) lookup(ctx context.Context) ([]Location, bool) {
	raw, err := c.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("catalog: cache lookup failed: %v", err)
		}
		return nil, false
	}
	var locations []Location
	if err := json.Unmarshal(raw, &locations); err != nil {
		log.Printf("catalog: dropping corrupt cache entry: %v", err)
		return nil, false
	}
	return locations, true
}
