package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nyashahama/balance-cup-backend/internal/round"
)

var _ round.Cache = (*Redis)(nil)

const keyPrefix = "round:"

// Redis stores each topic's items as one JSON value under "round:{topic}".
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps an existing client. ttl <= 0 stores entries without expiry.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl < 0 {
		ttl = 0
	}
	return &Redis{client: client, ttl: ttl}
}

// Dial parses a redis:// URL, connects and pings.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

func (r *Redis) Get(ctx context.Context, topic string) ([]round.ChoiceItem, bool, error) {
	raw, err := r.client.Get(ctx, keyPrefix+normalize(topic)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get %q: %w", topic, err)
	}

	var items []round.ChoiceItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("cache: corrupted entry for %q: %w", topic, err)
	}
	return items, true, nil
}

func (r *Redis) Put(ctx context.Context, topic string, items []round.ChoiceItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cache: encode %q: %w", topic, err)
	}
	if err := r.client.Set(ctx, keyPrefix+normalize(topic), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set %q: %w", topic, err)
	}
	return nil
}
