package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"face-insight-api/domain/dto"
	"face-insight-api/domain/repositories"
	"face-insight-api/domain/services"
	"face-insight-api/pkg/logger"
	"face-insight-api/pkg/metrics"
)

type ResultRepositoryImpl struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

func NewResultRepository(db *gorm.DB, queryTimeout time.Duration) repositories.ResultRepository {
	return &ResultRepositoryImpl{db: db, queryTimeout: queryTimeout}
}

// withConnection runs fn on a connection acquired for this call only and
// released on return, whatever fn returns. fn receives a fresh session bound
// to that connection.
func (r *ResultRepositoryImpl) withConnection(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error {
	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	start := time.Now()
	err := r.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		return fn(conn.Session(&gorm.Session{NewDB: true}))
	})
	err = classifyError(ctx, err)

	metrics.ObserveSince(metrics.DBQueryDuration.WithLabelValues(operation, metrics.Outcome(err)), start)
	logger.DB(operation, "Database operation finished", map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
		"error":       errorText(err),
	})

	return err
}

// classifyError maps driver and context failures onto the service errors.
// Errors that are already service errors pass through unchanged.
func classifyError(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrResultNotFound), errors.Is(err, services.ErrPartialData):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: database: %v", services.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", services.ErrConnection, err)
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (r *ResultRepositoryImpl) GetLatestResult(ctx context.Context) (*repositories.LatestResult, error) {
	var result repositories.LatestResult

	err := r.withConnection(ctx, "latest_result", func(tx *gorm.DB) error {
		err := tx.
			Order(clause.OrderByColumn{Column: clause.Column{Name: "time"}, Desc: true}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
			Take(&result.FaceImage).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.ErrResultNotFound
		}
		if err != nil {
			return err
		}

		id := result.FaceImage.ID
		parts := []struct {
			table string
			dest  interface{}
		}{
			{"Gender", &result.Gender},
			{"Race", &result.Race},
			{"Age", &result.Age},
		}
		for _, part := range parts {
			err := tx.Where("face_image_id = ?", id).Take(part.dest).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no %s row for face image %d", services.ErrPartialData, part.table, id)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ResultRepositoryImpl) ExportRows(ctx context.Context, filter dto.ExportFilter) ([]dto.ExportRow, error) {
	if filter.IsEmpty() {
		return nil, errors.New("export requires at least one filter")
	}

	query, args := BuildExportQuery(filter)
	rows := []dto.ExportRow{}

	err := r.withConnection(ctx, "export_rows", func(tx *gorm.DB) error {
		return tx.Raw(query, args...).Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *ResultRepositoryImpl) Ping(ctx context.Context) error {
	return r.withConnection(ctx, "ping", func(tx *gorm.DB) error {
		var one int
		return tx.Raw("SELECT 1").Scan(&one).Error
	})
}
