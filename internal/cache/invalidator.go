// AngelaMos | 2026
// invalidator.go

// Package cache holds the display-cache invalidation sink. The ledger
// only ever evicts through it after a successful write; award decisions
// never read cached state.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string)
}

const keyPrefix = "cache:"

func UserKey(wallet string) string {
	return keyPrefix + "user:" + wallet
}

func SubscriptionKey(sessionID string) string {
	return keyPrefix + "subscription:" + sessionID
}

type RedisInvalidator struct {
	client *redis.Client
}

func NewRedisInvalidator(client *redis.Client) *RedisInvalidator {
	return &RedisInvalidator{client: client}
}

// Invalidate evicts keys fire-and-forget. Failures are logged, never
// surfaced: the authoritative store has already committed.
func (i *RedisInvalidator) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	evictCtx, cancel := context.WithTimeout(
		context.WithoutCancel(ctx),
		2*time.Second,
	)
	defer cancel()

	if err := i.client.Del(evictCtx, keys...).Err(); err != nil {
		slog.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}

// Noop satisfies Invalidator for tests and cache-less deployments.
type Noop struct{}

func (Noop) Invalidate(context.Context, ...string) {}
