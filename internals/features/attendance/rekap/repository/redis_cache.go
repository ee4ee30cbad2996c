package repository

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"absensiku_backend/internals/features/attendance/rekap/service"
)

// RedisCache menyimpan blob rekap yang sudah jadi; regenerasi dalam 24 jam
// tidak perlu menyentuh database ataupun generator.
type RedisCache struct {
	rdb *goredis.Client
}

func NewRedisCache(rdb *goredis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

var _ service.Cache = (*RedisCache)(nil)

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	return val, err
}

func (c *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, val, ttl).Err()
}
