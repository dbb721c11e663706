package handlers

import (
	"face-insight-api/domain/repositories"
	"face-insight-api/domain/services"
	"face-insight-api/infrastructure/redis"
	"face-insight-api/infrastructure/storage"
	"face-insight-api/pkg/config"
)

// Services contains all the services needed for handlers
type Services struct {
	ResultService services.ResultService
}

// Repositories contains repositories needed for some handlers
type Repositories struct {
	ResultRepository repositories.ResultRepository
}

// Infrastructure holds clients the health checks probe. RedisClient may be nil.
type Infrastructure struct {
	RedisClient   *redis.RedisClient
	ObjectStorage storage.ObjectStorage
}

// Handlers contains all HTTP handlers
type Handlers struct {
	ResultHandler *ResultHandler
	HealthHandler *HealthHandler
	LogHandler    *LogHandler

	// Short accessors for routes
	Result *ResultHandler
	Health *HealthHandler
	Log    *LogHandler
}

// NewHandlers creates a new instance of Handlers with all dependencies
func NewHandlers(services *Services, repos *Repositories, infra *Infrastructure, cfg *config.Config) *Handlers {
	resultHandler := NewResultHandler(services.ResultService, cfg.Export.LegacyEmptyJSON)
	healthHandler := NewHealthHandler(cfg.App.Name, repos.ResultRepository, infra.RedisClient, infra.ObjectStorage)
	logHandler := NewLogHandler(cfg)

	return &Handlers{
		ResultHandler: resultHandler,
		HealthHandler: healthHandler,
		LogHandler:    logHandler,

		// Short accessors
		Result: resultHandler,
		Health: healthHandler,
		Log:    logHandler,
	}
}
