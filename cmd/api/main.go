package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"face-insight-api/interfaces/api/handlers"
	"face-insight-api/interfaces/api/middleware"
	"face-insight-api/interfaces/api/routes"
	"face-insight-api/pkg/di"
	"face-insight-api/pkg/logger"
)

func main() {
	// Initialize DI container
	container := di.NewContainer()

	// Initialize all dependencies
	if err := container.Initialize(); err != nil {
		logger.StartupError("container_init_failed", "Failed to initialize container", err, nil)
		os.Exit(1)
	}

	cfg := container.GetConfig()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
		AppName:      cfg.App.Name,
	})

	// Setup graceful shutdown
	setupGracefulShutdown(app)

	// Setup middleware
	app.Use(recover.New())
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.CorsMiddleware())

	// Create handlers from services
	h := handlers.NewHandlers(
		container.GetHandlerServices(),
		container.GetHandlerRepositories(),
		container.GetHandlerInfrastructure(),
		cfg,
	)

	// Setup routes
	routes.SetupRoutes(app, h, cfg, container.LimiterStorage())

	// Start server
	port := cfg.App.Port
	logger.Startup("server_starting", "Server starting", map[string]interface{}{
		"port":        port,
		"environment": cfg.App.Env,
		"health":      fmt.Sprintf("http://localhost:%s%s/health", port, cfg.App.BasePath),
		"latest":      fmt.Sprintf("http://localhost:%s%s/result/latest", port, cfg.App.BasePath),
		"export":      fmt.Sprintf("http://localhost:%s%s/result/csv", port, cfg.App.BasePath),
		"metrics":     cfg.Metrics.Enabled,
	})

	if err := app.Listen(":" + port); err != nil {
		logger.StartupError("server_failed", "Server failed to start", err, nil)
		os.Exit(1)
	}

	// Listen returns once the shutdown handler has drained the server
	if err := container.Cleanup(); err != nil {
		logger.StartupError("cleanup_failed", "Error during cleanup", err, nil)
	}
}

func setupGracefulShutdown(app *fiber.App) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Startup("shutdown_started", "Gracefully shutting down", nil)

		if err := app.Shutdown(); err != nil {
			logger.StartupError("server_shutdown_failed", "Error shutting down server", err, nil)
		}
	}()
}
