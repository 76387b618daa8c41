package database

import (
	"context"
	"log"
	"time"

	"api/config"

	"github.com/redis/go-redis/v9"
)

var REDIS *redis.Client

// InitRedis connects the cache client used by the handlers. Handlers treat
// cache errors as misses, so the server stays usable if redis drops out
// after boot.
func InitRedis() {
	REDIS = redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := REDIS.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect redis: ", err)
	}
}
