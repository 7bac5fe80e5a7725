package lib

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// GetRedisClient returns nil when REDIS_HOST is not set.
func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		return nil
	}
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

func revokedSessionKey(jti string) string {
	return fmt.Sprintf("session:%s:revoked", jti)
}

// RevokeSession blacklists a session id for the rest of its lifetime.
func RevokeSession(ctx context.Context, jti string, ttl time.Duration) error {
	rd := GetRedisClient()
	if rd == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return rd.SetEx(ctx, revokedSessionKey(jti), "1", ttl).Err()
}

func IsSessionRevoked(ctx context.Context, jti string) (bool, error) {
	rd := GetRedisClient()
	if rd == nil || jti == "" {
		return false, nil
	}
	n, err := rd.Exists(ctx, revokedSessionKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
