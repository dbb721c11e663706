package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"face-insight-api/pkg/logger"
	"face-insight-api/pkg/metrics"
)

const requestIDKey = "request_id"

// LoggerMiddleware assigns a request id, logs each finished request and
// records it in the HTTP metrics. An incoming X-Request-ID is kept.
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(requestIDKey, requestID)
		c.Set(fiber.HeaderXRequestID, requestID)

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		duration := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		metrics.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Method(), route).Observe(duration.Seconds())

		logger.APIRequest(requestID, duration, map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"route":  route,
			"status": status,
			"ip":     c.IP(),
		})

		return nil
	}
}

// RequestID returns the id LoggerMiddleware assigned to this request.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestIDKey).(string); ok {
		return id
	}
	return ""
}
