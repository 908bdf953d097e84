package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lucasmr/atelier/internal/platform/apperr"
)

// keyPrefix namespaces draft keys inside a possibly shared Redis instance.
const keyPrefix = "atelier:draft:"

// RedisStore persists drafts in Redis with a native TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a store on top of an already connected client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (store *RedisStore) Put(ctx context.Context, d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("draft: encode %q: %w", d.Key, err)
	}
	if err := store.client.Set(ctx, keyPrefix+d.Key, data, store.ttl).Err(); err != nil {
		return fmt.Errorf("draft: store %q: %w", d.Key, err)
	}
	return nil
}

func (store *RedisStore) Get(ctx context.Context, key string) (*Draft, error) {
	data, err := store.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFound("Draft")
	}
	if err != nil {
		return nil, fmt.Errorf("draft: load %q: %w", key, err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("draft: decode %q: %w", key, err)
	}
	return &d, nil
}

func (store *RedisStore) Delete(ctx context.Context, key string) error {
	if err := store.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("draft: delete %q: %w", key, err)
	}
	return nil
}
