package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/platefeed/api-go/config"
	"github.com/redis/go-redis/v9"
)

const likeCountTTL = time.Hour

// RedisCache is the engagement-counter side channel. Like counts live here
// with a TTL; the posts table keeps the durable copy and backfills misses.
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(cfg *config.AppConfig) *RedisCache {
	opts := &redis.Options{Addr: cfg.RedisAddr}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB != 0 {
		opts.DB = cfg.RedisDB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

// NewRedisCacheFromClient wraps an existing client. Used by tests with miniredis.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{Client: client}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func keyForPostLikes(postID uint) string {
	return fmt.Sprintf("likes:post:%d", postID)
}

// IncrPostLikes bumps the cached count if present. Returns (-1, nil) when the
// key is absent; the caller reseeds from the database.
func (c *RedisCache) IncrPostLikes(ctx context.Context, postID uint) (int64, error) {
	key := keyForPostLikes(postID)
	exists, err := c.Client.Exists(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return -1, nil
	}
	n, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = c.Client.Expire(ctx, key, likeCountTTL).Err()
	return n, nil
}

func (c *RedisCache) DecrPostLikes(ctx context.Context, postID uint) (int64, error) {
	key := keyForPostLikes(postID)
	exists, err := c.Client.Exists(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return -1, nil
	}
	n, err := c.Client.Decr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = c.Client.Expire(ctx, key, likeCountTTL).Err()
	return n, nil
}

func (c *RedisCache) SetPostLikes(ctx context.Context, postID uint, count int64) error {
	return c.Client.Set(ctx, keyForPostLikes(postID), count, likeCountTTL).Err()
}

// GetPostLikes returns the cached count, or (-1, nil) on a miss.
func (c *RedisCache) GetPostLikes(ctx context.Context, postID uint) (int64, error) {
	val, err := c.Client.Get(ctx, keyForPostLikes(postID)).Result()
	if errors.Is(err, redis.Nil) {
		return -1, nil
	} else if err != nil {
		return 0, err
	}
	_ = c.Client.Expire(ctx, keyForPostLikes(postID), likeCountTTL).Err()
	return strconv.ParseInt(val, 10, 64)
}

func (c *RedisCache) DeletePostLikes(ctx context.Context, postID uint) error {
	return c.Client.Del(ctx, keyForPostLikes(postID)).Err()
}
