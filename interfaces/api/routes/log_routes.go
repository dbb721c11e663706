package routes

import (
	"github.com/gofiber/fiber/v2"

	"face-insight-api/interfaces/api/handlers"
)

// SetupLogRoutes sets up log-related routes
func SetupLogRoutes(router fiber.Router, h *handlers.Handlers) {
	// Protected by admin token in header or query param
	admin := router.Group("/admin", h.Log.RequireAdmin)

	admin.Get("/logs", h.Log.GetLogs)
	admin.Get("/logs/files", h.Log.GetLogFiles)
	admin.Get("/logs/stats", h.Log.GetLogStats)
}
