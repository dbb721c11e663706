package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"face-insight-api/interfaces/api/handlers"
	"face-insight-api/pkg/config"
	"face-insight-api/pkg/metrics"
)

func SetupHealthRoutes(router fiber.Router, h *handlers.Handlers, cfg *config.Config) {
	router.Get("/healthz", h.Health.Healthz)
	router.Get("/health", h.Health.Health)
	router.Get("/health/detailed", h.Health.DetailedHealth)

	router.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to " + cfg.App.Name,
			"latest":  cfg.App.BasePath + "/result/latest",
			"export":  cfg.App.BasePath + "/result/csv",
			"health":  cfg.App.BasePath + "/health",
		})
	})
}

// SetupMetricsRoutes exposes the Prometheus registry at /metrics.
func SetupMetricsRoutes(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
}
