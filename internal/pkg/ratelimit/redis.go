package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Fixed-window counter: the first hit in a window sets its expiry.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// Limiter decides whether another hit for key fits in the window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
}

type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	prefix string
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedisLimiter returns nil when client is nil; a nil limiter allows everything.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(fixedWindowScript),
		prefix: prefix,
	}
}

// Allow fails open: Redis errors and a nil limiter never block a request.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if l == nil || l.client == nil {
		return true
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()

	allowed, err := l.script.Run(ctx, l.client, []string{l.prefix + key}, ttl, limit).Int64()
	if err != nil {
		slog.Warn("rate limiter unavailable, allowing request", "key", key, "error", err)
		return true
	}
	return allowed == 1
}
