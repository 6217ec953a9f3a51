package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter bounds outbound Telegram calls to a fixed number per
// second. The counter lives in Redis so every instance of the service
// shares one budget. A missing Redis fails open.
type RateLimiter struct {
	client *redis.Client
	limit  int
	logger *zap.Logger
}

// NewRateLimiter constructs a limiter allowing limit calls per second.
func NewRateLimiter(client *redis.Client, limit int, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, logger: logger}
}

// Wait blocks until the current one-second window has budget left.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if l == nil || l.client == nil || l.limit <= 0 {
		return nil
	}

	for {
		now := time.Now()
		key := fmt.Sprintf("notify:telegram_rate:%d", now.Unix())

		pipe := l.client.Pipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 2*time.Second)
		if _, err := pipe.Exec(ctx); err != nil {
			l.logger.Warn("rate limiter unavailable; proceeding", zap.Error(err))
			return nil
		}
		if incr.Val() <= int64(l.limit) {
			return nil
		}

		sleep := time.Until(now.Truncate(time.Second).Add(time.Second))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}
