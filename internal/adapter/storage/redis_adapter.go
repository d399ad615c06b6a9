package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/sofa-configurator/internal/core/domain"
)

const quoteKeyPrefix = "quote:"

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) GetQuote(ctx context.Context, key string) (domain.PricingBreakdown, bool, error) {
	raw, err := r.client.Get(ctx, quoteKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PricingBreakdown{}, false, nil
	}
	if err != nil {
		return domain.PricingBreakdown{}, false, err
	}

	var breakdown domain.PricingBreakdown
	if err := json.Unmarshal(raw, &breakdown); err != nil {
		return domain.PricingBreakdown{}, false, fmt.Errorf("decode quote %s: %w", key, err)
	}
	return breakdown, true, nil
}

func (r *RedisAdapter) SetQuote(ctx context.Context, key string, breakdown domain.PricingBreakdown, ttl time.Duration) error {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("encode quote %s: %w", key, err)
	}
	return r.client.Set(ctx, quoteKeyPrefix+key, raw, ttl).Err()
}
