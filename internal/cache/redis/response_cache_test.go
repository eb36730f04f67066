package redis_test

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/quill/internal/cache/redis"
	"github.com/davidbz/quill/internal/domain"
)

// unreachableClient points at a port nothing listens on.
func unreachableClient() *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestConfig_Enabled(t *testing.T) {
	require.False(t, redis.Config{}.Enabled())
	require.True(t, redis.Config{Addr: "localhost:6379"}.Enabled())
}

func TestResponseCache_SetRejectsNil(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	err := redis.NewResponseCache(client).Set(context.Background(), "k", nil, time.Minute)

	require.EqualError(t, err, "response cannot be nil")
}

func TestResponseCache_ConnectionErrorsAreNotMisses(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	cache := redis.NewResponseCache(client)
	ctx := context.Background()

	_, err := cache.Get(ctx, "completion:abc")
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrCacheMiss)

	err = cache.Set(ctx, "completion:abc", &domain.CompletionResponse{GeneratedText: "x"}, time.Minute)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to cache response")
}
