package redis

import (
	// Go Internal Packages
	"context"
	"time"

	// External Packages
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RateLimiter struct {
	client *redis.Client
	logger *zap.Logger
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, logger *zap.Logger, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, logger: logger, limit: limit, window: window}
}

// Allow counts one request for clientID inside a fixed window and reports
// whether it is still under the limit. Redis failures are returned so the
// caller can fail open instead of blocking traffic.
func (r *RateLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	key := "rl:" + clientID

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		r.client.Expire(ctx, key, r.window)
	}
	if count > int64(r.limit) {
		r.logger.Warn("rate limit exceeded", zap.String("client", clientID), zap.Int64("count", count))
		return false, nil
	}
	return true, nil
}
