package db

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis builds a redis client for the session snapshot cache. Returns
// nil when the URI is unusable; callers treat a nil client as cache off.
func InitRedis(uri string) *redis.Client {
	opts, err := redis.ParseURL(uri)
	if err != nil {
		log.Printf("Invalid REDIS_URI, session cache disabled: %v", err)
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unreachable, session cache disabled: %v", err)
		return nil
	}

	log.Println("Connected to Redis")
	return client
}
