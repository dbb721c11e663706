package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, 0, cfg.Database.MaxIdleConns)
	assert.Equal(t, 10*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, 15*time.Second, cfg.Storage.Timeout)
	assert.True(t, cfg.Annotate.Enabled)
	assert.Equal(t, 75, cfg.Annotate.JPEGQuality)
	assert.False(t, cfg.Export.LegacyEmptyJSON)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_PORT", "3307")
	t.Setenv("MYSQL_DB", "faces")
	t.Setenv("DB_QUERY_TIMEOUT", "3s")
	t.Setenv("API_BASE_PATH", "/_api/")
	t.Setenv("EXPORT_LEGACY_EMPTY_JSON", "true")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "3307", cfg.Database.Port)
	assert.Equal(t, "faces", cfg.Database.DBName)
	assert.Equal(t, 3*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "/_api", cfg.App.BasePath)
	assert.True(t, cfg.Export.LegacyEmptyJSON)
	assert.True(t, cfg.RedisEnabled())
}

func TestLoadConfig_RejectsUnknownDrivers(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Driver")
}

func TestValidate_LocalStorageNeedsRoot(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("STORAGE_LOCAL_ROOT", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LocalRoot")
}

func TestValidate_JPEGQualityBounds(t *testing.T) {
	t.Setenv("ANNOTATE_JPEG_QUALITY", "150")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JPEGQuality")
}
