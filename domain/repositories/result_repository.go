package repositories

import (
	"context"

	"face-insight-api/domain/dto"
	"face-insight-api/domain/models"
)

// LatestResult is the newest FaceImage with its three demographic rows.
type LatestResult struct {
	FaceImage models.FaceImage
	Gender    models.Gender
	Race      models.Race
	Age       models.Age
}

type ResultRepository interface {
	// GetLatestResult returns the FaceImage with the greatest time (highest id on ties)
	// joined with its Gender, Race and Age rows.
	GetLatestResult(ctx context.Context) (*LatestResult, error)

	// ExportRows runs the filtered four-table join. The filter must not be empty.
	ExportRows(ctx context.Context, filter dto.ExportFilter) ([]dto.ExportRow, error)

	// Ping checks that a connection can be acquired.
	Ping(ctx context.Context) error
}
