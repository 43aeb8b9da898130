package caption

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

const keyPrefix = "caption:"

// Cache is the subset of the redis client used for captions.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedDescriber memoizes captions by image content. Cache failures fall
// through to the wrapped describer.
type CachedDescriber struct {
	next  Describer
	cache Cache
	ttl   time.Duration
}

func NewCachedDescriber(next Describer, cache Cache, ttl time.Duration) *CachedDescriber {
	return &CachedDescriber{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func (c *CachedDescriber) Describe(ctx context.Context, image []byte) (string, error) {
	key := CacheKey(image)

	cached, err := c.cache.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, redis.Nil):
		zap.L().Warn("caption cache read failed", zap.String("key", key), zap.Error(err))
	}

	text, err := c.next.Describe(ctx, image)
	if err != nil {
		return "", err
	}

	if err = c.cache.Set(ctx, key, text, c.ttl).Err(); err != nil {
		zap.L().Warn("caption cache write failed", zap.String("key", key), zap.Error(err))
	}

	return text, nil
}

func CacheKey(image []byte) string {
	sum := blake2b.Sum256(image)
	return keyPrefix + hex.EncodeToString(sum[:])
}
