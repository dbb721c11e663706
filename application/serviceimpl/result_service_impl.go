package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"face-insight-api/domain/dto"
	"face-insight-api/domain/models"
	"face-insight-api/domain/repositories"
	"face-insight-api/domain/services"
	"face-insight-api/infrastructure/imaging"
	"face-insight-api/infrastructure/storage"
	"face-insight-api/pkg/logger"
	"face-insight-api/pkg/metrics"
)

type ResultServiceImpl struct {
	resultRepo     repositories.ResultRepository
	storage        storage.ObjectStorage
	annotator      *imaging.Annotator
	storageTimeout time.Duration
	now            func() time.Time
}

func NewResultService(
	resultRepo repositories.ResultRepository,
	objectStorage storage.ObjectStorage,
	annotator *imaging.Annotator,
	storageTimeout time.Duration,
) services.ResultService {
	return &ResultServiceImpl{
		resultRepo:     resultRepo,
		storage:        objectStorage,
		annotator:      annotator,
		storageTimeout: storageTimeout,
		now:            time.Now,
	}
}

// GetLatestResult loads the newest detection, fetches its image and returns
// it annotated as a JPEG data URI.
func (s *ResultServiceImpl) GetLatestResult(ctx context.Context) (*dto.LatestResultResponse, error) {
	latest, err := s.resultRepo.GetLatestResult(ctx)
	if err != nil {
		if !errors.Is(err, services.ErrResultNotFound) {
			logger.ResultError("latest_query_failed", "Failed to load latest result", err, nil)
		}
		return nil, err
	}

	photo, err := s.renderPhoto(ctx, latest)
	if err != nil {
		logger.ResultError("latest_photo_failed", "Failed to load latest result image", err, map[string]interface{}{
			"face_image_id": latest.FaceImage.ID,
			"image_path":    latest.FaceImage.ImagePath,
		})
		return nil, err
	}

	logger.Result("latest_served", "Latest result served", map[string]interface{}{
		"face_image_id": latest.FaceImage.ID,
		"epoch":         latest.FaceImage.Time,
		"image_bytes":   len(photo),
	})

	return dto.ToLatestResultResponse(&latest.FaceImage, &latest.Gender, &latest.Race, &latest.Age, imaging.DataURI(photo)), nil
}

func (s *ResultServiceImpl) renderPhoto(ctx context.Context, latest *repositories.LatestResult) ([]byte, error) {
	if s.storageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.storageTimeout)
		defer cancel()
	}

	body, err := s.storage.GetFileStream(ctx, latest.FaceImage.ImagePath)
	if err != nil {
		return nil, storageError(ctx, err)
	}
	defer body.Close()

	data, err := s.annotator.Render(body, annotationFor(latest))
	if err != nil {
		return nil, storageError(ctx, err)
	}
	return data, nil
}

func annotationFor(latest *repositories.LatestResult) imaging.Annotation {
	ann := imaging.Annotation{Label: Label(latest.Gender, latest.Race, latest.Age)}
	if f := latest.FaceImage; f.HasBox() {
		ann.Box = &imaging.Box{
			Left:   f.PositionLeft,
			Top:    f.PositionTop,
			Right:  f.PositionRight,
			Bottom: f.PositionBottom,
		}
	}
	return ann
}

// Label is the text drawn next to the face box, e.g. "male asian 20-29".
func Label(gender models.Gender, race models.Race, age models.Age) string {
	return fmt.Sprintf("%s %s %d-%d", gender.Type, race.Type, age.MinAge, age.MaxAge)
}

func storageError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: object storage: %v", services.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", services.ErrStorage, err)
}

// ExportCSV runs the filtered export and renders it as CSV.
func (s *ResultServiceImpl) ExportCSV(ctx context.Context, filter dto.ExportFilter) (*dto.CSVExport, error) {
	if filter.IsEmpty() {
		metrics.Exports.WithLabelValues("empty").Inc()
		logger.Export("export_skipped", "Export requested without filters", nil)
		return &dto.CSVExport{Empty: true}, nil
	}

	start := time.Now()
	rows, err := s.resultRepo.ExportRows(ctx, filter)
	if err != nil {
		metrics.Exports.WithLabelValues("error").Inc()
		logger.ExportError("export_query_failed", "Export query failed", err, nil)
		return nil, err
	}

	if len(rows) == 0 {
		metrics.Exports.WithLabelValues("empty").Inc()
		logger.Export("export_empty", "Export matched no rows", map[string]interface{}{
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return &dto.CSVExport{Empty: true}, nil
	}

	content, err := encodeCSV(rows)
	if err != nil {
		metrics.Exports.WithLabelValues("error").Inc()
		logger.ExportError("export_encode_failed", "Failed to encode CSV", err, nil)
		return nil, err
	}

	metrics.Exports.WithLabelValues("rows").Inc()
	metrics.ExportedRows.Add(float64(len(rows)))
	logger.Export("export_completed", "Export completed", map[string]interface{}{
		"rows":        len(rows),
		"bytes":       len(content),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return &dto.CSVExport{
		Rows:     len(rows),
		Filename: fmt.Sprintf("result-%d.csv", s.now().Unix()),
		Content:  content,
	}, nil
}
