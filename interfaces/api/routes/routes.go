package routes

import (
	"github.com/gofiber/fiber/v2"

	"face-insight-api/interfaces/api/handlers"
	"face-insight-api/pkg/config"
)

// SetupRoutes mounts every route under cfg.App.BasePath. /metrics stays at
// the root for scrapers. limiterStore may be nil.
func SetupRoutes(app *fiber.App, h *handlers.Handlers, cfg *config.Config, limiterStore fiber.Storage) {
	if cfg.Metrics.Enabled {
		SetupMetricsRoutes(app)
	}

	api := app.Group(cfg.App.BasePath)

	SetupHealthRoutes(api, h, cfg)
	SetupResultRoutes(api, h, &cfg.RateLimit, limiterStore)
	SetupLogRoutes(api, h)
}
