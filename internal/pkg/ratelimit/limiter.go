// Package ratelimit implements a fixed-window per-IP limiter for the AI
// endpoints, backed by Redis so the limit holds across instances.
package ratelimit

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"voicepad-be/internal/pkg/serverutils"
)

type Limiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
	logger *zap.Logger
}

// New builds a limiter allowing max requests per window per client IP.
func New(rdb *redis.Client, max int, window time.Duration, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{rdb: rdb, max: max, window: window, logger: logger}
}

// Middleware rejects over-limit requests with 429. When Redis is down the
// request is allowed through: losing rate limiting is preferable to losing
// the feature.
func (l *Limiter) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if l.rdb == nil {
			return ctx.Next()
		}

		key := "ratelimit:ai:" + ctx.IP()
		count, err := l.rdb.Incr(context.Background(), key).Result()
		if err != nil {
			l.logger.Warn("rate limiter redis unavailable, allowing request", zap.Error(err))
			return ctx.Next()
		}
		if count == 1 {
			l.rdb.Expire(context.Background(), key, l.window)
		}
		if count > int64(l.max) {
			ttl, _ := l.rdb.TTL(context.Background(), key).Result()
			retryAfter := int(ttl.Seconds())
			if retryAfter <= 0 {
				retryAfter = int(l.window.Seconds())
			}
			return &serverutils.RateLimitedError{RetryAfterSeconds: retryAfter}
		}
		return ctx.Next()
	}
}
