package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Annotate  AnnotateConfig
	Export    ExportConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Log       LogConfig
	Admin     AdminConfig
	Metrics   MetricsConfig
}

type AppConfig struct {
	Name     string `validate:"required"`
	Port     string `validate:"required,numeric"`
	Env      string
	BasePath string // Route prefix, e.g. "/_api"; empty mounts at the root
}

type DatabaseConfig struct {
	Driver       string        `validate:"oneof=mysql sqlite"`
	Host         string        `validate:"required_if=Driver mysql"`
	Port         string        `validate:"omitempty,numeric"`
	User         string
	Password     string
	DBName       string        `validate:"required"` // file path when Driver is sqlite
	QueryTimeout time.Duration `validate:"gt=0"`
	MaxOpenConns int           `validate:"gte=0"`
	MaxIdleConns int           `validate:"gte=0"` // 0 closes connections on release
	AutoMigrate  bool          // local sqlite development only
	Debug        bool
}

type StorageConfig struct {
	Driver    string        `validate:"oneof=s3 local"`
	Timeout   time.Duration `validate:"gt=0"`
	LocalRoot string        `validate:"required_if=Driver local"`
	S3        S3Config
}

type S3Config struct {
	Region          string
	Bucket          string // used for bare keys without an s3:// prefix
	Endpoint        string // S3-compatible endpoint, enables path-style addressing
	AccessKeyID     string
	SecretAccessKey string
}

type AnnotateConfig struct {
	Enabled     bool
	Label       bool
	FontSize    float64 `validate:"gt=0"`
	JPEGQuality int     `validate:"gte=1,lte=100"`
}

type ExportConfig struct {
	LegacyEmptyJSON bool // answer empty exports with 200 {} instead of 204
}

type RateLimitConfig struct {
	Enabled       bool
	MaxRequests   int `validate:"gte=0"`
	WindowSeconds int `validate:"gte=0"`
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type LogConfig struct {
	Dir           string `validate:"required"`
	Console       bool
	Level         string
	RetentionDays int `validate:"gte=0"` // 0 keeps logs forever
}

type AdminConfig struct {
	Token string // empty disables the /admin/logs endpoints
}

type MetricsConfig struct {
	Enabled bool
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists (optional for production)
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "Face Insight API"),
			Port:     getEnv("APP_PORT", "8000"),
			Env:      getEnv("APP_ENV", "development"),
			BasePath: strings.TrimSuffix(getEnv("API_BASE_PATH", ""), "/"),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "mysql"),
			Host:         getEnv("MYSQL_HOST", "localhost"),
			Port:         getEnv("MYSQL_PORT", "3306"),
			User:         getEnv("MYSQL_USER", "root"),
			Password:     getEnv("MYSQL_PASSWORD", ""),
			DBName:       getEnv("MYSQL_DB", "face_insight"),
			QueryTimeout: getEnvDuration("DB_QUERY_TIMEOUT", 10*time.Second),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 16),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 0),
			AutoMigrate:  getEnvBool("DB_AUTO_MIGRATE", false),
			Debug:        getEnvBool("DB_DEBUG", false),
		},
		Storage: StorageConfig{
			Driver:    getEnv("STORAGE_DRIVER", "s3"),
			Timeout:   getEnvDuration("STORAGE_TIMEOUT", 15*time.Second),
			LocalRoot: getEnv("STORAGE_LOCAL_ROOT", ""),
			S3: S3Config{
				Region:          getEnv("S3_REGION", "us-east-1"),
				Bucket:          getEnv("S3_BUCKET", ""),
				Endpoint:        getEnv("S3_ENDPOINT", ""),
				AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			},
		},
		Annotate: AnnotateConfig{
			Enabled:     getEnvBool("ANNOTATE_ENABLED", true),
			Label:       getEnvBool("ANNOTATE_LABEL", false),
			FontSize:    getEnvFloat("ANNOTATE_FONT_SIZE", 16),
			JPEGQuality: getEnvInt("ANNOTATE_JPEG_QUALITY", 75),
		},
		Export: ExportConfig{
			LegacyEmptyJSON: getEnvBool("EXPORT_LEGACY_EMPTY_JSON", false),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvBool("RATE_LIMIT_ENABLED", false),
			MaxRequests:   getEnvInt("RATE_LIMIT_MAX_REQUESTS", 60),
			WindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Log: LogConfig{
			Dir:           getEnv("LOG_DIR", "logs"),
			Console:       getEnvBool("LOG_CONSOLE", true),
			Level:         getEnv("LOG_LEVEL", "INFO"),
			RetentionDays: getEnvInt("LOG_RETENTION_DAYS", 14),
		},
		Admin: AdminConfig{
			Token: getEnv("ADMIN_TOKEN", ""),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the struct tags above and reports every violation at once.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// RedisEnabled reports whether a Redis host was configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
