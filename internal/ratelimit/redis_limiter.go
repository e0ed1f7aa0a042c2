package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements Limiter on Redis so admission control works across
// multiple gateway instances. The window state is kept in a hash and mutated
// atomically with a Lua script.
type RedisLimiter struct {
	client      *redis.Client
	keyPrefix   string
	windowLen   time.Duration
	maxRequests int
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter. keyPrefix
// defaults to "rate_limit:" if empty.
func NewRedisLimiter(client *redis.Client, keyPrefix string, windowLen time.Duration, maxRequests int) *RedisLimiter {
	if keyPrefix == "" {
		keyPrefix = "rate_limit:"
	}

	return &RedisLimiter{
		client:      client,
		keyPrefix:   keyPrefix,
		windowLen:   windowLen,
		maxRequests: maxRequests,
	}
}

// The script atomically:
// 1. Reads the window start and count
// 2. Resets the window when it has lapsed
// 3. Increments the count
// 4. Returns count and window start for the caller to derive the decision
const consumeScript = `
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local windowMs = tonumber(ARGV[2])

	local state = redis.call('HMGET', key, 'start', 'count')
	local start = tonumber(state[1])
	local count = tonumber(state[2])

	if start == nil or now - start >= windowMs then
		start = now
		count = 0
	end

	count = count + 1

	redis.call('HSET', key, 'start', tostring(start), 'count', tostring(count))
	redis.call('PEXPIRE', key, windowMs)

	return {count, start}
`

func (l *RedisLimiter) Consume(ctx context.Context, identity string) (Decision, error) {
	now := time.Now()

	result, err := l.client.Eval(ctx, consumeScript,
		[]string{l.keyPrefix + identity},
		now.UnixMilli(),
		l.windowLen.Milliseconds(),
	).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	vals, ok := result.([]interface{})
	if !ok || len(vals) != 2 {
		return Decision{}, fmt.Errorf("unexpected redis rate limit reply: %v", result)
	}

	count := vals[0].(int64)
	start := time.UnixMilli(vals[1].(int64))
	resetAt := start.Add(l.windowLen)

	remaining := l.maxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		OK:         int(count) <= l.maxRequests,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: resetAt.Sub(now),
	}, nil
}

// Ping checks if the Redis connection is healthy.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
