package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set HARDWOOD_TEST_REDIS_URL to run the round-trip test against a live server.
func liveCache(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("HARDWOOD_TEST_REDIS_URL")
	if url == "" {
		t.Skip("HARDWOOD_TEST_REDIS_URL not set")
	}
	rc, err := NewRedisCache(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestRedisCache_RoundTrip(t *testing.T) {
	rc := liveCache(t)
	ctx := context.Background()
	key := "test:" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { _ = rc.client.Del(ctx, KeyPrefix+key).Err() })

	_, ok, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	want := Response{Status: 200, Body: []byte(`{"events":[]}`)}
	require.NoError(t, rc.Set(ctx, key, want, time.Minute))

	got, ok, err := rc.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestNewRedisCache_BadURL(t *testing.T) {
	t.Parallel()

	_, err := NewRedisCache(context.Background(), "not a url")
	require.Error(t, err)
}

func TestRedisCache_UnreachableServer(t *testing.T) {
	t.Parallel()

	rc := NewFromClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	}))
	t.Cleanup(func() { _ = rc.Close() })

	ctx := context.Background()
	_, ok, err := rc.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, rc.Set(ctx, "k", Response{Status: 200}, time.Minute))
	assert.NoError(t, rc.Set(ctx, "k", Response{Status: 200}, 0), "zero ttl is a no-op")
}
