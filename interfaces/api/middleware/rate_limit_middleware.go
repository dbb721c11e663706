package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"face-insight-api/pkg/config"
	"face-insight-api/pkg/utils"
)

// RateLimiter limits requests per client IP. A nil store keeps counters in
// memory; pass the Redis storage to share them across instances.
func RateLimiter(cfg *config.RateLimitConfig, store fiber.Storage) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return limiter.New(limiter.Config{
		Max:        cfg.MaxRequests,
		Expiration: time.Duration(cfg.WindowSeconds) * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.CodedErrorResponse(c, fiber.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
				"Too many requests. Please try again later.", nil)
		},
		Storage:                store,
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
	})
}
