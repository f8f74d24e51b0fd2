package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV adapts a Redis client to the store's key-value contract. Keys are
// namespaced and written without TTL so collections survive restarts.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV constructs the adapter. An empty prefix defaults to "feestore".
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	if prefix == "" {
		prefix = "feestore"
	}
	return &RedisKV{client: client, prefix: prefix}
}

// Get returns the stored value for key; the bool reports presence.
func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	raw, err := r.client.Get(ctx, r.namespaced(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, true, nil
}

// Set replaces the value stored for key.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.namespaced(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisKV) namespaced(key string) string {
	return r.prefix + ":" + key
}
