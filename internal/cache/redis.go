package cache

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every proxy response key.
const KeyPrefix = "hardwood:proxy:"

// Response is one cached upstream reply.
type Response struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// RedisCache stores proxy responses in Redis with a per-entry TTL.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redisURL and pings it.
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}

	rc := NewFromClient(redis.NewClient(opt))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.HealthCheck(pingCtx); err != nil {
		_ = rc.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return rc, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Get returns the cached response for key. A miss is (Response{}, false, nil).
func (rc *RedisCache) Get(ctx context.Context, key string) (Response, bool, error) {
	raw, err := rc.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Response{}, false, nil
	}
	if err != nil {
		return Response{}, false, errors.Wrapf(err, "reading %s", key)
	}

	var resp Response
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return Response{}, false, errors.Wrapf(err, "decoding %s", key)
	}
	return resp, true, nil
}

// Set stores resp under key for ttl. A non-positive ttl stores nothing.
func (rc *RedisCache) Set(ctx context.Context, key string, resp Response, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := sonic.Marshal(resp)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	return errors.Wrapf(rc.client.Set(ctx, KeyPrefix+key, raw, ttl).Err(), "writing %s", key)
}
