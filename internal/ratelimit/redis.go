package ratelimit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/oggyb/muzz-matching/internal/metrics"
)

// slidingWindow prunes entries at or before the cutoff, then admits the new
// member only while the window holds fewer than limit entries.
//
// KEYS[1] window key
// ARGV[1] now (ms), ARGV[2] cutoff (ms), ARGV[3] limit, ARGV[4] member, ARGV[5] window (ms)
//
// Returns {1, 0} when admitted, {0, oldest_ms} when rejected.
var slidingWindow = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[2])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[3]) then
  local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  return {0, tonumber(oldest[2])}
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return {1, 0}
`)

// RedisLimiter is the sorted-set sliding window backend.
type RedisLimiter struct {
	client *redis.Client
	rule   Rule
	now    Clock
	log    *slog.Logger
}

// NewRedisLimiter creates a Limiter backed by the given Redis client.
func NewRedisLimiter(client *redis.Client, rule Rule, log *slog.Logger) *RedisLimiter {
	return &RedisLimiter{client: client, rule: rule, now: systemClock, log: log}
}

// WithClock replaces the time source.
func (l *RedisLimiter) WithClock(now Clock) *RedisLimiter {
	l.now = now
	return l
}

// Allow checks whether actorID is within the rule and records the action when
// it is. The slot is taken before the caller's write; a caller whose write
// fails hands it back with Release.
//
// On Redis errors the method fails open (allowed, nil error) so that a Redis
// outage does not block legitimate traffic; the failure is logged and counted.
func (l *RedisLimiter) Allow(ctx context.Context, actorID uint64) (Result, error) {
	key := l.key(actorID)
	now := l.now().UnixMilli()
	window := l.rule.Window.Milliseconds()
	member := uuid.NewString()

	res, err := slidingWindow.Run(ctx, l.client, []string{key},
		now, now-window, l.rule.Limit, member, window,
	).Int64Slice()
	if err != nil || len(res) != 2 {
		l.log.Warn("rate limiter unavailable, failing open", "key", key, "err", err)
		metrics.RateLimitFailOpenTotal.Inc()
		return allowed(), nil
	}

	if res[0] == 1 {
		return Result{Allowed: true, Token: member}, nil
	}
	return denied(time.Duration(res[1]+window-now) * time.Millisecond), nil
}

// Release removes the member recorded by Allow.
func (l *RedisLimiter) Release(ctx context.Context, actorID uint64, token string) error {
	return l.client.ZRem(ctx, l.key(actorID), token).Err()
}

func (l *RedisLimiter) key(actorID uint64) string {
	return l.rule.Key + strconv.FormatUint(actorID, 10)
}
