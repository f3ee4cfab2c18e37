package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pfrederiksen/campus-events/internal/event"
)

const (
	DefaultRedisKey = "campus-events:cache"
	// DefaultRedisTTL outlives a calendar day so the previous day's entry still loads.
	DefaultRedisTTL = 48 * time.Hour
)

// RedisStore keeps the snapshot as a JSON string under one key.
type RedisStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. Empty key and zero ttl select the defaults.
func NewRedisStore(client redis.Cmdable, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context) (*event.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.key, err)
	}
	return decode([]byte(data))
}

func (s *RedisStore) Save(ctx context.Context, snap *event.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, string(data), s.ttl).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("deleting %s: %w", s.key, err)
	}
	return nil
}
