package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckAndCountAttempt bumps the failure counter for key and reports whether
// the caller is still under limit. A nil client disables limiting.
func CheckAndCountAttempt(ctx context.Context, rdb *redis.Client, key string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	redisKey := fmt.Sprintf("login_attempts:%s", key)

	count, err := rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count login attempt in redis: %w", err)
	}

	if count == 1 {
		rdb.Expire(ctx, redisKey, window)
	}

	return count <= int64(limit), nil
}

// ClearAttempts resets the failure counter after a successful login.
func ClearAttempts(ctx context.Context, rdb *redis.Client, key string) error {
	if rdb == nil {
		return nil
	}
	redisKey := fmt.Sprintf("login_attempts:%s", key)
	_, err := rdb.Del(ctx, redisKey).Result()
	return err
}
