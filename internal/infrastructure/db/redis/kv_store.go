package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
)

const defaultPrefix = "portal"

// KVStore is a KeyValueStore backed by Redis.
// Key format: <prefix>:<key>
type KVStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var (
	_ ports.KeyValueStore = (*KVStore)(nil)
	_ ports.Pinger        = (*KVStore)(nil)
)

// NewKVStore wraps client. An empty prefix uses "portal"; a zero ttl keeps
// values until they are deleted.
func NewKVStore(client *redis.Client, prefix string, ttl time.Duration) *KVStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &KVStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *KVStore) key(k string) string {
	return fmt.Sprintf("%s:%s", s.prefix, k)
}
