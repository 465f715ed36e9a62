package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bloodlink/internal/bloodtype/models"
	"bloodlink/pkg/domain"
)

const compatKeyPrefix = "bloodtype:compat:"

// RedisCache caches resolved compatibility lists as JSON.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func compatKey(recipient domain.BloodTypeID) string {
	return compatKeyPrefix + recipient.String()
}

// Get reports a miss with ok=false and a nil error.
func (c *RedisCache) Get(ctx context.Context, recipient domain.BloodTypeID) (*models.Compatibility, bool, error) {
	raw, err := c.client.Get(ctx, compatKey(recipient)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var out models.Compatibility
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decode cached compatibility: %w", err)
	}
	return &out, true, nil
}

func (c *RedisCache) Set(ctx context.Context, compat *models.Compatibility) error {
	raw, err := json.Marshal(compat)
	if err != nil {
		return fmt.Errorf("encode compatibility: %w", err)
	}
	if err := c.client.Set(ctx, compatKey(compat.RecipientTypeID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, recipient domain.BloodTypeID) error {
	if err := c.client.Del(ctx, compatKey(recipient)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
