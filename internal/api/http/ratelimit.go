package http

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/municipal-helpdesk/pkg/util/errorutil"
)

// LoginLimiter caps login attempts per client IP in a fixed Redis window, so the limit is
// shared by every instance.
type LoginLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	logger *zap.Logger
}

// NewLoginLimiter builds a limiter. A non-positive limit disables it.
func NewLoginLimiter(client *redis.Client, limit int, window time.Duration, logger *zap.Logger) *LoginLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginLimiter{client: client, limit: limit, window: window, prefix: "helpdesk:login:", logger: logger}
}

// Allow records an attempt for key and reports whether it is within the limit, plus the
// time left in the window.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := l.prefix + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, 0, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return true, 0, err
		}
	}
	ttl, err := l.client.TTL(ctx, redisKey).Result()
	if err != nil {
		return true, 0, err
	}
	if ttl < 0 {
		// Key lost its expiry; restart the window.
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return true, 0, err
		}
		ttl = l.window
	}
	return count <= int64(l.limit), ttl, nil
}

// Middleware enforces the limit. Redis failures let the request through.
func (l *LoginLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l == nil || l.client == nil || l.limit <= 0 {
			return c.Next()
		}
		allowed, retryAfter, err := l.Allow(c.UserContext(), c.IP())
		if err != nil {
			l.logger.Warn("login rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		if !allowed {
			seconds := int(retryAfter.Seconds())
			if seconds < 0 {
				seconds = 0
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
			return apperrors.NewRateLimited("Demasiados intentos, intenta de nuevo más tarde")
		}
		return c.Next()
	}
}
