package repository

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"
	goredis "github.com/redis/go-redis/v9"

	"absensiku_backend/internals/features/attendance/piket/dto"
	"absensiku_backend/internals/features/attendance/piket/service"
)

// RedisBuffer menyimpan event piket tertolak per tenant di redis dengan TTL
// dua hari; restart proses tidak menghilangkan buffer.
type RedisBuffer struct {
	rdb *goredis.Client
}

func NewRedisBuffer(rdb *goredis.Client) *RedisBuffer {
	return &RedisBuffer{rdb: rdb}
}

var _ service.Buffer = (*RedisBuffer)(nil)

func bufferKey(domain string) string {
	return "piket:buffer:" + domain
}

func (b *RedisBuffer) Load(ctx context.Context, domain string) ([]dto.CheckEvent, error) {
	raw, err := b.rdb.Get(ctx, bufferKey(domain)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var events []dto.CheckEvent
	if err := sonic.UnmarshalString(raw, &events); err != nil {
		// buffer korup lebih baik dibuang daripada memblokir ingest
		return nil, nil
	}
	return events, nil
}

func (b *RedisBuffer) Save(ctx context.Context, domain string, events []dto.CheckEvent) error {
	if len(events) == 0 {
		return b.rdb.Del(ctx, bufferKey(domain)).Err()
	}
	raw, err := sonic.MarshalString(events)
	if err != nil {
		return err
	}
	return b.rdb.Set(ctx, bufferKey(domain), raw, service.BufferTTL).Err()
}
