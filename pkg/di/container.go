package di

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"face-insight-api/application/serviceimpl"
	"face-insight-api/domain/repositories"
	"face-insight-api/domain/services"
	"face-insight-api/infrastructure/database"
	"face-insight-api/infrastructure/imaging"
	"face-insight-api/infrastructure/redis"
	"face-insight-api/infrastructure/storage"
	"face-insight-api/interfaces/api/handlers"
	"face-insight-api/pkg/config"
	"face-insight-api/pkg/logger"
	"face-insight-api/pkg/scheduler"
)

const limiterKeyPrefix = "face-insight:limiter:"

type Container struct {
	// Configuration
	Config *config.Config

	// ConsoleOutput, when set before initialization, receives console log
	// lines instead of stdout.
	ConsoleOutput io.Writer

	// Infrastructure
	DB             *gorm.DB
	RedisClient    *redis.RedisClient
	ObjectStorage  storage.ObjectStorage
	Annotator      *imaging.Annotator
	EventScheduler scheduler.EventScheduler

	// Repositories
	ResultRepository repositories.ResultRepository

	// Services
	ResultService services.ResultService
}

func NewContainer() *Container {
	return &Container{}
}

// Initialize wires everything the HTTP server needs.
func (c *Container) Initialize() error {
	if err := c.InitializeCore(); err != nil {
		return err
	}

	c.initRedis()

	if err := c.initScheduler(); err != nil {
		return err
	}

	return nil
}

// InitializeCore wires configuration, logging, the database, object storage
// and the result service. The CLI stops here.
func (c *Container) InitializeCore() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initLogger(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initRepositories(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	return nil
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

func (c *Container) initLogger() error {
	if err := logger.Init(c.Config.Log.Dir, c.Config.Log.Console); err != nil {
		return err
	}
	logger.Default().SetMinLevel(logger.ParseLevel(c.Config.Log.Level))
	if c.ConsoleOutput != nil {
		logger.Default().SetConsoleOutput(c.ConsoleOutput)
	}
	logger.Startup("config_loaded", "Configuration loaded", map[string]interface{}{
		"env":       c.Config.App.Env,
		"db_driver": c.Config.Database.Driver,
		"storage":   c.Config.Storage.Driver,
		"log_dir":   c.Config.Log.Dir,
	})
	return nil
}

func (c *Container) initInfrastructure() error {
	// Initialize Database
	dbConfig := database.DatabaseConfig{
		Driver:       c.Config.Database.Driver,
		Host:         c.Config.Database.Host,
		Port:         c.Config.Database.Port,
		User:         c.Config.Database.User,
		Password:     c.Config.Database.Password,
		DBName:       c.Config.Database.DBName,
		MaxOpenConns: c.Config.Database.MaxOpenConns,
		MaxIdleConns: c.Config.Database.MaxIdleConns,
		Debug:        c.Config.Database.Debug,
	}

	db, err := database.NewDatabase(dbConfig)
	if err != nil {
		return err
	}
	c.DB = db
	logger.Startup("db_opened", "Database handle opened", map[string]interface{}{"driver": dbConfig.Driver})

	if c.Config.Database.AutoMigrate {
		if dbConfig.Driver != database.DriverSQLite {
			logger.StartupWarn("db_migrate_skipped", "Auto migration only runs against sqlite", nil)
		} else {
			if err := database.Migrate(db); err != nil {
				return err
			}
			logger.Startup("db_migrated", "Database migrated", nil)
		}
	}

	// Initialize Object Storage
	objectStorage, err := storage.NewStorage(context.Background(), storage.StorageConfig{
		Driver:    c.Config.Storage.Driver,
		LocalRoot: c.Config.Storage.LocalRoot,
		S3: storage.S3Config{
			Region:          c.Config.Storage.S3.Region,
			Bucket:          c.Config.Storage.S3.Bucket,
			Endpoint:        c.Config.Storage.S3.Endpoint,
			AccessKeyID:     c.Config.Storage.S3.AccessKeyID,
			SecretAccessKey: c.Config.Storage.S3.SecretAccessKey,
		},
	})
	if err != nil {
		return err
	}
	c.ObjectStorage = objectStorage
	logger.Startup("storage_initialized", "Object storage initialized", map[string]interface{}{"driver": objectStorage.Driver()})

	// Initialize Annotator
	annotator, err := imaging.NewAnnotator(imaging.Options{
		Enabled:     c.Config.Annotate.Enabled,
		Label:       c.Config.Annotate.Label,
		FontSize:    c.Config.Annotate.FontSize,
		JPEGQuality: c.Config.Annotate.JPEGQuality,
	})
	if err != nil {
		return err
	}
	c.Annotator = annotator

	return nil
}

// initRedis connects the optional rate limiter store. An unreachable Redis
// falls back to in-memory counters.
func (c *Container) initRedis() {
	if !c.Config.RedisEnabled() {
		return
	}

	client := redis.NewRedisClient(redis.RedisConfig{
		Host:     c.Config.Redis.Host,
		Port:     c.Config.Redis.Port,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})

	if err := client.Ping(context.Background()); err != nil {
		logger.StartupWarn("redis_connection_failed", "Redis connection failed, rate limiter uses memory", map[string]interface{}{"error": err.Error()})
		_ = client.Close()
		return
	}

	c.RedisClient = client
	logger.Startup("redis_connected", "Redis connected", nil)
}

func (c *Container) initRepositories() error {
	c.ResultRepository = database.NewResultRepository(c.DB, c.Config.Database.QueryTimeout)
	logger.Startup("repositories_initialized", "Repositories initialized", nil)
	return nil
}

func (c *Container) initServices() error {
	c.ResultService = serviceimpl.NewResultService(
		c.ResultRepository,
		c.ObjectStorage,
		c.Annotator,
		c.Config.Storage.Timeout,
	)
	logger.Startup("services_initialized", "Services initialized", nil)
	return nil
}

func (c *Container) initScheduler() error {
	c.EventScheduler = scheduler.NewEventScheduler()

	if err := scheduler.ScheduleLogRetention(c.EventScheduler, logger.Default(), c.Config.Log.RetentionDays); err != nil {
		return err
	}

	c.EventScheduler.Start()
	logger.Startup("scheduler_started", "Event scheduler started", nil)
	return nil
}

func (c *Container) Cleanup() error {
	logger.Startup("cleanup_started", "Starting cleanup...", nil)

	// Stop scheduler
	if c.EventScheduler != nil && c.EventScheduler.IsRunning() {
		c.EventScheduler.Stop()
		logger.Startup("scheduler_stopped", "Event scheduler stopped", nil)
	}

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.StartupWarn("redis_close_failed", "Failed to close Redis connection", map[string]interface{}{"error": err.Error()})
		} else {
			logger.Startup("redis_closed", "Redis connection closed", nil)
		}
	}

	// Close database handle
	if c.DB != nil {
		if err := database.Close(c.DB); err != nil {
			logger.StartupWarn("db_close_failed", "Failed to close database", map[string]interface{}{"error": err.Error()})
		} else {
			logger.Startup("db_closed", "Database closed", nil)
		}
	}

	logger.Startup("cleanup_completed", "Cleanup completed", nil)
	logger.Default().Close()
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// LimiterStorage returns the Redis-backed limiter store, or nil for memory.
func (c *Container) LimiterStorage() fiber.Storage {
	if c.RedisClient == nil {
		return nil
	}
	return c.RedisClient.Storage(limiterKeyPrefix)
}

func (c *Container) GetHandlerServices() *handlers.Services {
	return &handlers.Services{
		ResultService: c.ResultService,
	}
}

func (c *Container) GetHandlerRepositories() *handlers.Repositories {
	return &handlers.Repositories{
		ResultRepository: c.ResultRepository,
	}
}

func (c *Container) GetHandlerInfrastructure() *handlers.Infrastructure {
	return &handlers.Infrastructure{
		RedisClient:   c.RedisClient,
		ObjectStorage: c.ObjectStorage,
	}
}
