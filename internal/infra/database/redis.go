package database

import (
	"github.com/redis/go-redis/v9"
)

// NewRedis opens the client used for signal pub/sub and preference storage.
func NewRedis(addr string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
