package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sainath5001/walrustruth/internal/domain"
)

// QueryCache implements domain.QueryCache on plain Redis strings. Keys are
// prefixed with "q:" to keep query entries apart from locks and rate-limit
// state sharing the same database.
type QueryCache struct {
	rdb *redis.Client
}

// NewQueryCache creates a QueryCache backed by the given Client.
func NewQueryCache(c *Client) *QueryCache {
	return &QueryCache{rdb: c.Underlying()}
}

func queryKey(key string) string { return "q:" + key }

// Get retrieves a cached query result. It returns domain.ErrNotFound when the
// key does not exist.
func (qc *QueryCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := qc.rdb.Get(ctx, queryKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return data, nil
}

// Set stores a query result under key with the given TTL.
func (qc *QueryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := qc.rdb.Set(ctx, queryKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// Invalidate removes the given keys. Missing keys are not an error.
func (qc *QueryCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = queryKey(k)
	}
	if err := qc.rdb.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis: invalidate %d keys: %w", len(keys), err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.QueryCache = (*QueryCache)(nil)
