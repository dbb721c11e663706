package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"face-insight-api/pkg/logger"
	"face-insight-api/pkg/metrics"
)

const (
	DriverS3    = "s3"
	DriverLocal = "local"
)

// ObjectStorage reads stored detection images. Callers must close the
// returned reader.
type ObjectStorage interface {
	GetFileStream(ctx context.Context, uri string) (io.ReadCloser, error)
	Driver() string
}

type StorageConfig struct {
	Driver    string
	LocalRoot string
	S3        S3Config
}

// NewStorage builds the backend selected by config.Driver.
func NewStorage(ctx context.Context, config StorageConfig) (ObjectStorage, error) {
	switch config.Driver {
	case DriverS3, "":
		return NewS3Storage(ctx, config.S3)
	case DriverLocal:
		return NewLocalStorage(config.LocalRoot)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", config.Driver)
	}
}

// observe records one fetch in metrics and the storage log.
func observe(driver, uri string, start time.Time, err error) {
	metrics.ObserveSince(metrics.StorageFetchDuration.WithLabelValues(driver, metrics.Outcome(err)), start)

	fields := map[string]interface{}{
		"driver":      driver,
		"uri":         uri,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		logger.StorageError("get_file_stream", "Failed to open object", err, fields)
		return
	}
	logger.Storage("get_file_stream", "Opened object", fields)
}
