package services

import (
	"context"
	"errors"

	"face-insight-api/domain/dto"
)

// Errors returned by the result service. Handlers map them to status codes with errors.Is.
var (
	ErrResultNotFound = errors.New("no detection result found")
	ErrPartialData    = errors.New("detection result is missing demographic data")
	ErrConnection     = errors.New("database unavailable")
	ErrStorage        = errors.New("object storage unavailable")
	ErrTimeout        = errors.New("operation timed out")
	ErrValidation     = errors.New("invalid query parameter")
)

// ResultService serves the latest detection result and CSV exports of historical results.
type ResultService interface {
	// GetLatestResult returns the newest detection with its image as a JPEG data URI.
	GetLatestResult(ctx context.Context) (*dto.LatestResultResponse, error)

	// ExportCSV runs the filtered export. An empty filter or zero matching rows
	// yields an export with Empty set, never an error.
	ExportCSV(ctx context.Context, filter dto.ExportFilter) (*dto.CSVExport, error)
}
