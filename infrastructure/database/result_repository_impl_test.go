package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"face-insight-api/domain/dto"
	"face-insight-api/domain/models"
	"face-insight-api/domain/repositories"
	"face-insight-api/domain/services"
)

// setupTestDB opens a private shared-cache in-memory sqlite database. One
// connection stays open for the test so the database survives between the
// per-call connections the repository acquires.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := NewDatabase(DatabaseConfig{
		Driver:       DriverSQLite,
		DBName:       dsn,
		MaxOpenConns: 4,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	keepAlive, err := sqlDB.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = keepAlive.Close()
		_ = sqlDB.Close()
	})

	require.NoError(t, Migrate(db))
	return db
}

type seedEvent struct {
	face   models.FaceImage
	gender *models.Gender
	race   *models.Race
	age    *models.Age
}

func completeEvent(id, epoch int64, gender, race string, minAge, maxAge int) seedEvent {
	return seedEvent{
		face: models.FaceImage{
			ID: id, ImagePath: fmt.Sprintf("s3://faces/%d.jpg", id),
			CameraID: 1, BranchID: 1, Time: epoch,
			PositionTop: 10, PositionRight: 60, PositionBottom: 70, PositionLeft: 20,
		},
		gender: &models.Gender{FaceImageID: id, Type: gender, Confidence: 0.9},
		race:   &models.Race{FaceImageID: id, Type: race, Confidence: 0.8},
		age:    &models.Age{FaceImageID: id, MinAge: minAge, MaxAge: maxAge, Confidence: 0.7},
	}
}

func seed(t *testing.T, db *gorm.DB, events ...seedEvent) {
	t.Helper()
	for _, e := range events {
		require.NoError(t, db.Create(&e.face).Error)
		if e.gender != nil {
			require.NoError(t, db.Create(e.gender).Error)
		}
		if e.race != nil {
			require.NoError(t, db.Create(e.race).Error)
		}
		if e.age != nil {
			require.NoError(t, db.Create(e.age).Error)
		}
	}
}

func newTestRepository(t *testing.T) (repositories.ResultRepository, *gorm.DB) {
	db := setupTestDB(t)
	return NewResultRepository(db, 5*time.Second), db
}

func TestGetLatestResult_ReturnsGreatestTime(t *testing.T) {
	repo, db := newTestRepository(t)
	seed(t, db,
		completeEvent(1, 1000, "male", "asian", 20, 30),
		completeEvent(2, 3000, "female", "white", 30, 40),
		completeEvent(3, 2000, "male", "black", 10, 20),
	)

	result, err := repo.GetLatestResult(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.FaceImage.ID)
	assert.Equal(t, int64(3000), result.FaceImage.Time)
	assert.Equal(t, "s3://faces/2.jpg", result.FaceImage.ImagePath)
	assert.Equal(t, 60, result.FaceImage.PositionRight)
	assert.Equal(t, "female", result.Gender.Type)
	assert.Equal(t, "white", result.Race.Type)
	assert.Equal(t, 30, result.Age.MinAge)
	assert.Equal(t, 40, result.Age.MaxAge)
	assert.InDelta(t, 0.7, result.Age.Confidence, 1e-9)
}

func TestGetLatestResult_TieOnTimePicksHighestID(t *testing.T) {
	repo, db := newTestRepository(t)
	seed(t, db,
		completeEvent(7, 5000, "male", "asian", 20, 30),
		completeEvent(9, 5000, "female", "white", 30, 40),
		completeEvent(8, 5000, "male", "black", 10, 20),
	)

	for i := 0; i < 3; i++ {
		result, err := repo.GetLatestResult(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(9), result.FaceImage.ID)
	}
}

func TestGetLatestResult_EmptyStoreIsNotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.GetLatestResult(context.Background())
	assert.ErrorIs(t, err, services.ErrResultNotFound)
}

func TestGetLatestResult_MissingInferenceIsPartialData(t *testing.T) {
	repo, db := newTestRepository(t)
	event := completeEvent(4, 4000, "male", "asian", 20, 30)
	event.race = nil
	seed(t, db, completeEvent(1, 1000, "male", "asian", 20, 30), event)

	_, err := repo.GetLatestResult(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrPartialData)
	assert.Contains(t, err.Error(), "Race")
}

func TestGetLatestResult_ClosedDatabaseIsConnectionError(t *testing.T) {
	repo, db := newTestRepository(t)
	require.NoError(t, Close(db))

	_, err := repo.GetLatestResult(context.Background())
	assert.ErrorIs(t, err, services.ErrConnection)
}

func TestGetLatestResult_ExpiredDeadlineIsTimeout(t *testing.T) {
	repo, db := newTestRepository(t)
	seed(t, db, completeEvent(1, 1000, "male", "asian", 20, 30))

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := repo.GetLatestResult(ctx)
	assert.ErrorIs(t, err, services.ErrTimeout)
}

func TestPing(t *testing.T) {
	repo, db := newTestRepository(t)
	assert.NoError(t, repo.Ping(context.Background()))

	require.NoError(t, Close(db))
	assert.ErrorIs(t, repo.Ping(context.Background()), services.ErrConnection)
}

func TestExportRows_MinAgeFilter(t *testing.T) {
	repo, db := newTestRepository(t)
	event := completeEvent(1, 1700000000, "male", "asian", 20, 29)
	event.face.BranchID = 2
	event.face.CameraID = 3
	event.face.ImagePath = "s3://b/x.jpg"
	event.gender.Confidence = 0.98
	event.race.Confidence = 0.77
	event.age.Confidence = 0.61
	seed(t, db, event)

	rows, err := repo.ExportRows(context.Background(), dto.ExportFilter{MinAge: intPtr(25)})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = repo.ExportRows(context.Background(), dto.ExportFilter{MinAge: intPtr(15)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, dto.ExportRow{
		Time:             1700000000,
		BranchID:         2,
		CameraID:         3,
		FilePath:         "s3://b/x.jpg",
		Gender:           "male",
		GenderConfidence: 0.98,
		MaxAge:           29,
		MinAge:           20,
		AgeConfidence:    0.61,
		Race:             "asian",
		RaceConfidence:   0.77,
	}, rows[0])
}

func TestExportRows_TimeBoundsAreInclusive(t *testing.T) {
	repo, db := newTestRepository(t)
	seed(t, db,
		completeEvent(1, 999, "male", "asian", 20, 30),
		completeEvent(2, 1000, "male", "asian", 20, 30),
		completeEvent(3, 1500, "male", "asian", 20, 30),
		completeEvent(4, 2000, "male", "asian", 20, 30),
		completeEvent(5, 2001, "male", "asian", 20, 30),
	)

	rows, err := repo.ExportRows(context.Background(), dto.ExportFilter{
		Start: int64Ptr(1000),
		End:   int64Ptr(2000),
	})
	require.NoError(t, err)

	var times []int64
	for _, row := range rows {
		times = append(times, row.Time)
	}
	assert.Equal(t, []int64{2000, 1500, 1000}, times)
}

func TestExportRows_RaceIsSubstringMatch(t *testing.T) {
	repo, db := newTestRepository(t)
	seed(t, db,
		completeEvent(1, 1000, "male", "asian", 20, 30),
		completeEvent(2, 2000, "male", "caucasian", 20, 30),
		completeEvent(3, 3000, "male", "black", 20, 30),
	)

	rows, err := repo.ExportRows(context.Background(), dto.ExportFilter{Race: stringPtr("asian")})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "caucasian", rows[0].Race)
	assert.Equal(t, "asian", rows[1].Race)
}

func TestExportRows_WildcardsMatchLiterally(t *testing.T) {
	repo, db := newTestRepository(t)
	seed(t, db,
		completeEvent(1, 1000, "male", "asian", 20, 30),
		completeEvent(2, 2000, "male", "as%an", 20, 30),
	)

	rows, err := repo.ExportRows(context.Background(), dto.ExportFilter{Race: stringPtr("%")})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "as%an", rows[0].Race)
}

func TestExportRows_FiltersAreConjunctive(t *testing.T) {
	repo, db := newTestRepository(t)
	seed(t, db,
		completeEvent(1, 1000, "male", "asian", 20, 30),
		completeEvent(2, 2000, "female", "asian", 20, 30),
		completeEvent(3, 3000, "male", "white", 20, 30),
	)

	rows, err := repo.ExportRows(context.Background(), dto.ExportFilter{
		Race:   stringPtr("asian"),
		Gender: stringPtr("female"),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2000), rows[0].Time)
}

func TestExportRows_EventsWithoutAllInferencesAreExcluded(t *testing.T) {
	repo, db := newTestRepository(t)
	partial := completeEvent(2, 2000, "male", "asian", 20, 30)
	partial.age = nil
	seed(t, db, completeEvent(1, 1000, "male", "asian", 20, 30), partial)

	rows, err := repo.ExportRows(context.Background(), dto.ExportFilter{Start: int64Ptr(0)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1000), rows[0].Time)
}

func TestExportRows_MinAgeConfidenceBoundsGenderConfidence(t *testing.T) {
	repo, db := newTestRepository(t)
	// gender 0.9, age 0.7: the option compares against gender confidence
	seed(t, db, completeEvent(1, 1000, "male", "asian", 20, 30))

	rows, err := repo.ExportRows(context.Background(), dto.ExportFilter{MinAgeConfidence: floatPtr(0.85)})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = repo.ExportRows(context.Background(), dto.ExportFilter{MinAgeConfidence: floatPtr(0.95)})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExportRows_RejectsEmptyFilter(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.ExportRows(context.Background(), dto.ExportFilter{})
	assert.Error(t, err)
}
