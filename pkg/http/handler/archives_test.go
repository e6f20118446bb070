package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yurykabanov/dbxbackuper/pkg/backup"
)

// region archiveRepositoryMock
type archiveRepositoryMock struct {
	mock.Mock
}

func (m *archiveRepositoryMock) FindLatest(ctx context.Context) ([]backup.BackupArchive, error) {
	args := m.Called(ctx)
	return args.Get(0).([]backup.BackupArchive), args.Error(1)
}

// endregion

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard

	return logger
}

func TestArchiveMetricHandler(t *testing.T) {
	repo := &archiveRepositoryMock{}
	repo.On("FindLatest", mock.Anything).Return([]backup.BackupArchive{
		{
			Identity:      "sales_2025.06.01_14.22.dbx",
			GroupKey:      "sales.dbx",
			Format:        "zip",
			SizeBytes:     1024,
			SourceModTime: time.Unix(1748787720, 0),
			CreatedAt:     time.Unix(1748800000, 0),
		},
	}, nil)

	rec := httptest.NewRecorder()
	NewArchiveMetricHandler(discardLogger(), repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/archives", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{
		"group": "sales.dbx",
		"identity": "sales_2025.06.01_14.22.dbx",
		"format": "zip",
		"archive_size": 1024,
		"source_mtime": 1748787720000,
		"created_at_mtime": 1748800000000
	}]`, rec.Body.String())
}

func TestArchiveMetricHandler_Empty(t *testing.T) {
	repo := &archiveRepositoryMock{}
	repo.On("FindLatest", mock.Anything).Return([]backup.BackupArchive(nil), nil)

	rec := httptest.NewRecorder()
	NewArchiveMetricHandler(discardLogger(), repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/archives", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestArchiveMetricHandler_RepositoryError(t *testing.T) {
	repo := &archiveRepositoryMock{}
	repo.On("FindLatest", mock.Anything).Return([]backup.BackupArchive(nil), errors.New("database is locked"))

	rec := httptest.NewRecorder()
	NewArchiveMetricHandler(discardLogger(), repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/archives", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
