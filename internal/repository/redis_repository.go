package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache stores entries under "capture:<key>" as a hash holding the
// value and its last update time.
func NewRedisCache(rdb *redis.Client) Cache {
	return &redisCache{rdb: rdb, prefix: "capture"}
}

func (r *redisCache) entryKey(key string) string { return fmt.Sprintf("%s:%s", r.prefix, key) }

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.rdb.HGet(ctx, r.entryKey(key), "value").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return r.rdb.HSet(ctx, r.entryKey(key), "value", value, "updated_at", now).Err()
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.entryKey(key)).Err()
}
