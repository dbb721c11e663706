package serviceimpl

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"face-insight-api/domain/dto"
	"face-insight-api/domain/models"
	"face-insight-api/domain/repositories"
	"face-insight-api/domain/services"
	"face-insight-api/infrastructure/imaging"
)

type mockResultRepository struct {
	mock.Mock
}

func (m *mockResultRepository) GetLatestResult(ctx context.Context) (*repositories.LatestResult, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.(*repositories.LatestResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) ExportRows(ctx context.Context, filter dto.ExportFilter) ([]dto.ExportRow, error) {
	args := m.Called(ctx, filter)
	if r := args.Get(0); r != nil {
		return r.([]dto.ExportRow), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockObjectStorage struct {
	mock.Mock
}

func (m *mockObjectStorage) GetFileStream(ctx context.Context, uri string) (io.ReadCloser, error) {
	args := m.Called(ctx, uri)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockObjectStorage) Driver() string {
	return "mock"
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 64, 48)), nil))
	return buf.Bytes()
}

func workedExample() *repositories.LatestResult {
	return &repositories.LatestResult{
		FaceImage: models.FaceImage{
			ID: 1, ImagePath: "s3://b/x.jpg", CameraID: 3, BranchID: 2, Time: 1000,
			PositionTop: 10, PositionRight: 60, PositionBottom: 40, PositionLeft: 20,
		},
		Gender: models.Gender{FaceImageID: 1, Type: "male", Confidence: 0.98},
		Race:   models.Race{FaceImageID: 1, Type: "asian", Confidence: 0.77},
		Age:    models.Age{FaceImageID: 1, MinAge: 20, MaxAge: 29, Confidence: 0.61},
	}
}

func newTestService(t *testing.T, repo *mockResultRepository, store *mockObjectStorage) *ResultServiceImpl {
	t.Helper()
	annotator, err := imaging.NewAnnotator(imaging.Options{Enabled: true, Label: true, FontSize: 12, JPEGQuality: 75})
	require.NoError(t, err)

	svc := NewResultService(repo, store, annotator, time.Second).(*ResultServiceImpl)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return svc
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func TestGetLatestResult_BuildsResponse(t *testing.T) {
	repo := new(mockResultRepository)
	store := new(mockObjectStorage)
	repo.On("GetLatestResult", mock.Anything).Return(workedExample(), nil)
	store.On("GetFileStream", mock.Anything, "s3://b/x.jpg").Return(io.NopCloser(bytes.NewReader(testJPEG(t))), nil)

	resp, err := newTestService(t, repo, store).GetLatestResult(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1000), resp.Epoch)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, int64(2), resp.BranchID)
	assert.Equal(t, int64(3), resp.CameraID)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, dto.GenderResult{Type: "male", Confidence: 0.98}, resp.Results[0].Gender)
	assert.Equal(t, dto.RaceResult{Type: "asian", Confidence: 0.77}, resp.Results[0].Race)
	assert.Equal(t, dto.AgeResult{MinAge: 20, MaxAge: 29, Confidence: 0.61}, resp.Results[0].Age)
	assert.True(t, strings.HasPrefix(resp.PhotoDataURI, "data:image/jpeg;base64,"))
	assert.Greater(t, len(resp.PhotoDataURI), len(imaging.DataURIPrefix))

	repo.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "GetFileStream", 1)
}

func TestGetLatestResult_PassesRepositoryErrorsThrough(t *testing.T) {
	for _, repoErr := range []error{services.ErrResultNotFound, services.ErrPartialData, services.ErrConnection} {
		repo := new(mockResultRepository)
		store := new(mockObjectStorage)
		repo.On("GetLatestResult", mock.Anything).Return(nil, repoErr)

		_, err := newTestService(t, repo, store).GetLatestResult(context.Background())
		assert.ErrorIs(t, err, repoErr)
		store.AssertNotCalled(t, "GetFileStream", mock.Anything, mock.Anything)
	}
}

func TestGetLatestResult_StorageFailureIsStorageError(t *testing.T) {
	repo := new(mockResultRepository)
	store := new(mockObjectStorage)
	repo.On("GetLatestResult", mock.Anything).Return(workedExample(), nil)
	store.On("GetFileStream", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := newTestService(t, repo, store).GetLatestResult(context.Background())
	assert.ErrorIs(t, err, services.ErrStorage)
	assert.Contains(t, err.Error(), "access denied")
}

func TestGetLatestResult_UndecodableImageIsStorageError(t *testing.T) {
	repo := new(mockResultRepository)
	store := new(mockObjectStorage)
	repo.On("GetLatestResult", mock.Anything).Return(workedExample(), nil)
	store.On("GetFileStream", mock.Anything, mock.Anything).Return(io.NopCloser(strings.NewReader("garbage")), nil)

	_, err := newTestService(t, repo, store).GetLatestResult(context.Background())
	assert.ErrorIs(t, err, services.ErrStorage)
}

func TestGetLatestResult_StorageDeadlineIsTimeout(t *testing.T) {
	repo := new(mockResultRepository)
	store := new(mockObjectStorage)
	repo.On("GetLatestResult", mock.Anything).Return(workedExample(), nil)
	store.On("GetFileStream", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

	_, err := newTestService(t, repo, store).GetLatestResult(context.Background())
	assert.ErrorIs(t, err, services.ErrTimeout)
}

func TestGetLatestResult_StorageCallHasDeadline(t *testing.T) {
	repo := new(mockResultRepository)
	store := new(mockObjectStorage)
	repo.On("GetLatestResult", mock.Anything).Return(workedExample(), nil)
	store.On("GetFileStream", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return(io.NopCloser(bytes.NewReader(testJPEG(t))), nil)

	_, err := newTestService(t, repo, store).GetLatestResult(context.Background())
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestExportCSV_EmptyFilterSkipsRepository(t *testing.T) {
	repo := new(mockResultRepository)

	export, err := newTestService(t, repo, new(mockObjectStorage)).ExportCSV(context.Background(), dto.ExportFilter{})
	require.NoError(t, err)
	assert.True(t, export.Empty)
	assert.Nil(t, export.Content)
	repo.AssertNotCalled(t, "ExportRows", mock.Anything, mock.Anything)
}

func TestExportCSV_NoRowsIsEmpty(t *testing.T) {
	repo := new(mockResultRepository)
	filter := dto.ExportFilter{MinAge: intPtr(25)}
	repo.On("ExportRows", mock.Anything, filter).Return([]dto.ExportRow{}, nil)

	export, err := newTestService(t, repo, new(mockObjectStorage)).ExportCSV(context.Background(), filter)
	require.NoError(t, err)
	assert.True(t, export.Empty)
	repo.AssertExpectations(t)
}

func TestExportCSV_WritesHeaderAndRows(t *testing.T) {
	repo := new(mockResultRepository)
	filter := dto.ExportFilter{MinAge: intPtr(15)}
	repo.On("ExportRows", mock.Anything, filter).Return([]dto.ExportRow{
		{
			Time: 1700000000, BranchID: 2, CameraID: 3, FilePath: "s3://b/x.jpg",
			Gender: "male", GenderConfidence: 0.98, MaxAge: 29, MinAge: 20,
			AgeConfidence: 0.61, Race: "asian", RaceConfidence: 0.77,
		},
		{
			Time: 1600000000, BranchID: 1, CameraID: 1, FilePath: "s3://b/y, z.jpg",
			Gender: "female", GenderConfidence: 1, MaxAge: 40, MinAge: 30,
			AgeConfidence: 0.5, Race: "white", RaceConfidence: 0.125,
		},
	}, nil)

	export, err := newTestService(t, repo, new(mockObjectStorage)).ExportCSV(context.Background(), filter)
	require.NoError(t, err)

	assert.False(t, export.Empty)
	assert.Equal(t, 2, export.Rows)
	assert.Equal(t, "result-1700000000.csv", export.Filename)
	assert.Equal(t,
		"time,branch_id,camera_id,filepath,gender,gender_confidence,max_age,min_age,age_confidence,race,race_confidence\r\n"+
			"1700000000,2,3,s3://b/x.jpg,male,0.98,29,20,0.61,asian,0.77\r\n"+
			"1600000000,1,1,\"s3://b/y, z.jpg\",female,1,40,30,0.5,white,0.125\r\n",
		string(export.Content))
}

func TestExportCSV_RepositoryErrorPropagates(t *testing.T) {
	repo := new(mockResultRepository)
	filter := dto.ExportFilter{Start: int64Ptr(1)}
	repo.On("ExportRows", mock.Anything, filter).Return(nil, services.ErrTimeout)

	_, err := newTestService(t, repo, new(mockObjectStorage)).ExportCSV(context.Background(), filter)
	assert.ErrorIs(t, err, services.ErrTimeout)
}

func TestLabel(t *testing.T) {
	r := workedExample()
	assert.Equal(t, "male asian 20-29", Label(r.Gender, r.Race, r.Age))
}

func TestAnnotationFor_SkipsEmptyBox(t *testing.T) {
	r := workedExample()
	assert.Equal(t, &imaging.Box{Left: 20, Top: 10, Right: 60, Bottom: 40}, annotationFor(r).Box)

	r.FaceImage.PositionRight = r.FaceImage.PositionLeft
	assert.Nil(t, annotationFor(r).Box)
}
