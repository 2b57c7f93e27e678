package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/muzz-matching/internal/config"
)

// DefaultLikeCountTTL bounds staleness when an invalidation is lost.
const DefaultLikeCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return NewFromClient(redis.NewClient(opts), cfg.Matching.LikeCountTTL)
}

// NewFromClient wraps an existing client; tests point it at miniredis.
func NewFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultLikeCountTTL
	}
	return &RedisCache{Client: client, TTL: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForLikeCount generates Redis key for a user's received-likes count.
func KeyForLikeCount(userID uint64) string {
	return fmt.Sprintf("likes:count:%d", userID)
}

// SetLikeCount stores the count computed from the ledger.
func (c *RedisCache) SetLikeCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, KeyForLikeCount(userID), count, c.TTL).Err()
}

// GetLikeCount returns the cached count. ok is false on a miss.
func (c *RedisCache) GetLikeCount(ctx context.Context, userID uint64) (count int64, ok bool, err error) {
	val, err := c.Client.Get(ctx, KeyForLikeCount(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	count, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt like count for user %d: %w", userID, err)
	}
	return count, true, nil
}

// InvalidateLikeCounts drops the cached counts of every given user.
func (c *RedisCache) InvalidateLikeCounts(ctx context.Context, userIDs ...uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, KeyForLikeCount(id))
	}
	return c.Client.Del(ctx, keys...).Err()
}
