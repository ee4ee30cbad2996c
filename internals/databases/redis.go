package databases

import (
	"context"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"absensiku_backend/internals/configs"
)

var Redis *goredis.Client

// ConnectRedis membuka koneksi redis untuk buffer piket dan cache rekap.
func ConnectRedis() {
	Redis = goredis.NewClient(&goredis.Options{
		Addr:     configs.RedisAddr,
		Password: configs.RedisPass,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Fatalf("❌ Gagal konek Redis: %v", err)
	}
	log.Println("✅ Redis connected.")
}
