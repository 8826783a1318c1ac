package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/psytech/suvichar/internal/session"
)

const codeRateLimitPrefix = "rl:code:"

// CodeRequestRateLimit caps code requests per phone per minute using a Redis
// counter. Without Redis, or when Redis fails, requests pass through.
func CodeRequestRateLimit(cache *redis.Client, maxPerMin int, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			Phone string `json:"phone"`
		}
		_ = c.BodyParser(&req)

		subject, err := session.NormalizePhone(strings.TrimSpace(req.Phone))
		if err != nil {
			subject = c.IP()
		}
		key := codeRateLimitPrefix + subject

		ctx := c.UserContext()
		count, err := cache.Incr(ctx, key).Result()
		if err != nil {
			logger.WarnContext(ctx, "rate limit counter unavailable", slog.Any("error", err))
			return c.Next()
		}
		if count == 1 {
			cache.Expire(ctx, key, time.Minute)
		}
		if count > int64(maxPerMin) {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many code requests, try again later")
		}
		return c.Next()
	}
}
