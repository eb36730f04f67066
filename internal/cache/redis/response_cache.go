package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/quill/internal/domain"
	"github.com/davidbz/quill/internal/observability"
)

// Config contains Redis connection settings for the response cache.
type Config struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB"       envDefault:"0"`
	TTL      time.Duration `env:"CACHE_TTL"      envDefault:"1h"`
}

// Enabled reports whether a Redis address has been configured.
func (c Config) Enabled() bool {
	return c.Addr != ""
}

// NewClient opens a Redis client for cfg.
func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// ResponseCache implements domain.ResponseCache on top of Redis strings.
type ResponseCache struct {
	client redis.Cmdable
}

// NewResponseCache creates a Redis-backed response cache.
func NewResponseCache(client redis.Cmdable) *ResponseCache {
	return &ResponseCache{client: client}
}

// Get loads a cached response; a missing key yields domain.ErrCacheMiss.
func (c *ResponseCache) Get(ctx context.Context, key string) (*domain.CompletionResponse, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var resp domain.CompletionResponse
	if unmarshalErr := json.Unmarshal(raw, &resp); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal cached response: %w", unmarshalErr)
	}

	return &resp, nil
}

// Set stores resp under key. A zero ttl keeps the entry until evicted.
func (c *ResponseCache) Set(
	ctx context.Context,
	key string,
	resp *domain.CompletionResponse,
	ttl time.Duration,
) error {
	if resp == nil {
		return errors.New("response cannot be nil")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	logger := observability.FromContext(ctx)
	logger.Debug("caching response",
		observability.String("key", key),
		observability.Int("data_size", len(data)),
		observability.Duration("ttl", ttl))

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, 0)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}

	if _, execErr := pipe.Exec(ctx); execErr != nil {
		logger.Error("cache write failed", observability.Error(execErr))
		return fmt.Errorf("failed to cache response: %w", execErr)
	}

	return nil
}
