package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessedEventCache_SeenAfterMark(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewProcessedEventCache(client)
	ctx := context.Background()

	seen, err := cache.Seen(ctx, "pay_abc")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, cache.MarkSeen(ctx, "pay_abc", 24*time.Hour))

	seen, err = cache.Seen(ctx, "pay_abc")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestProcessedEventCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewProcessedEventCache(client)
	ctx := context.Background()

	require.NoError(t, cache.MarkSeen(ctx, "pay_ttl", 1*time.Second))

	s.FastForward(2 * time.Second)

	seen, err := cache.Seen(ctx, "pay_ttl")
	require.NoError(t, err)
	assert.False(t, seen, "expired key should read as unseen")
}

func TestProcessedEventCache_DistinctPayments(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewProcessedEventCache(client)
	ctx := context.Background()

	require.NoError(t, cache.MarkSeen(ctx, "pay_1", time.Hour))

	seen, err := cache.Seen(ctx, "pay_2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestHealthCheck_Ping(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	hc := NewHealthCheck(client)

	assert.NoError(t, hc.Ping(context.Background()))
	assert.Equal(t, "redis", hc.Name())
}
