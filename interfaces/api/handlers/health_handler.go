package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"face-insight-api/domain/repositories"
	"face-insight-api/infrastructure/redis"
	"face-insight-api/infrastructure/storage"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	appName       string
	resultRepo    repositories.ResultRepository
	redisClient   *redis.RedisClient
	objectStorage storage.ObjectStorage
}

// NewHealthHandler creates a new health handler. redisClient may be nil.
func NewHealthHandler(
	appName string,
	resultRepo repositories.ResultRepository,
	redisClient *redis.RedisClient,
	objectStorage storage.ObjectStorage,
) *HealthHandler {
	return &HealthHandler{
		appName:       appName,
		resultRepo:    resultRepo,
		redisClient:   redisClient,
		objectStorage: objectStorage,
	}
}

// ComponentHealth represents health status of a component
type ComponentHealth struct {
	Status  string `json:"status"` // "ok", "error", "unavailable"
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// DetailedHealthResponse represents detailed health check response
type DetailedHealthResponse struct {
	Status     string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
}

// Healthz always answers 200 with an empty body.
func (h *HealthHandler) Healthz(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Server is running",
		"service": h.appName,
	})
}

// DetailedHealth reports each dependency. The database is critical; Redis
// only degrades the status.
func (h *HealthHandler) DetailedHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	response := DetailedHealthResponse{
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth),
	}

	dbHealth := h.checkDatabase(ctx)
	response.Components["database"] = dbHealth

	redisHealth := h.checkRedis(ctx)
	response.Components["redis"] = redisHealth

	response.Components["storage"] = h.checkStorage()

	switch {
	case dbHealth.Status != "ok":
		response.Status = "unhealthy"
	case redisHealth.Status == "error":
		response.Status = "degraded"
	default:
		response.Status = "healthy"
	}

	statusCode := fiber.StatusOK
	if response.Status == "unhealthy" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.resultRepo == nil {
		return ComponentHealth{Status: "error", Message: "Database not configured"}
	}

	if err := h.resultRepo.Ping(ctx); err != nil {
		return ComponentHealth{Status: "error", Message: "Database ping failed: " + err.Error()}
	}

	return ComponentHealth{
		Status:  "ok",
		Message: "Connected",
		Latency: time.Since(start).String(),
	}
}

func (h *HealthHandler) checkRedis(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.redisClient == nil {
		return ComponentHealth{Status: "unavailable", Message: "Redis not configured"}
	}

	if err := h.redisClient.Ping(ctx); err != nil {
		return ComponentHealth{Status: "error", Message: "Redis ping failed: " + err.Error()}
	}

	return ComponentHealth{
		Status:  "ok",
		Message: "Connected",
		Latency: time.Since(start).String(),
	}
}

// checkStorage reports configuration only; probing would cost an object read.
func (h *HealthHandler) checkStorage() ComponentHealth {
	if h.objectStorage == nil {
		return ComponentHealth{Status: "unavailable", Message: "Object storage not configured"}
	}
	return ComponentHealth{Status: "ok", Message: "Driver: " + h.objectStorage.Driver()}
}
