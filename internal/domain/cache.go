package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// QueryCache is the single shared read cache, keyed by (query type,
// parameters). Multiple readers may consult it concurrently; entries are only
// ever invalidated by the mutation orchestrator's settlement step, never by
// readers. Get returns ErrNotFound on a miss.
type QueryCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// EventBus carries small fan-out messages between components, most notably
// cache-invalidation events that UI subscribers react to by re-reading.
type EventBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe returns a channel of payloads that closes when ctx ends.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// Locker hands out short-lived exclusive locks. Acquire returns ErrLockHeld
// when the key is already locked; on success the returned release function
// must be called and is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// RateLimiter decides whether a request identified by key is allowed under a
// sliding window of at most limit requests per window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// InvalidationChannel is the bus channel that carries cache-invalidation
// events emitted by settled mutations.
const InvalidationChannel = "invalidations"

// Cache key builders. All parameters are normalized so the same logical query
// always maps to the same key.

func MarketsKey() string { return "markets" }

func MarketKey(id uint64) string { return fmt.Sprintf("market:%d", id) }

func WagerKey(marketID uint64, bettor string) string {
	return fmt.Sprintf("wager:%d:%s", marketID, strings.ToLower(bettor))
}

func BalanceKey(address string) string {
	return "balance:" + strings.ToLower(address)
}

func AllowanceKey(owner, spender string) string {
	return "allowance:" + strings.ToLower(owner) + ":" + strings.ToLower(spender)
}

func LeaderboardKey() string { return "leaderboard" }
