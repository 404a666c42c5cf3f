package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisSnapshotKey = "huddle:snapshot"

// RedisStore keeps the snapshot under a single key. Redis persistence
// settings decide how durable that is; the gateway treats it like any other
// best-effort backend.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	raw, err := s.client.Get(ctx, redisSnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("load redis snapshot: %w", err)
	}
	return raw, nil
}

func (s *RedisStore) Save(ctx context.Context, blob []byte) error {
	if err := s.client.Set(ctx, redisSnapshotKey, blob, 0).Err(); err != nil {
		return fmt.Errorf("save redis snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
