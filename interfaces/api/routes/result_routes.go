package routes

import (
	"github.com/gofiber/fiber/v2"

	"face-insight-api/interfaces/api/handlers"
	"face-insight-api/interfaces/api/middleware"
	"face-insight-api/pkg/config"
)

func SetupResultRoutes(router fiber.Router, h *handlers.Handlers, rateLimit *config.RateLimitConfig, limiterStore fiber.Storage) {
	result := router.Group("/result", middleware.RateLimiter(rateLimit, limiterStore))

	result.Get("/latest", h.Result.GetLatestResult)
	result.Get("/csv", h.Result.ExportCSV)
}
