package run

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reqcontext "github.com/Ramsey-B/bramble/pkg/context"
	"github.com/Ramsey-B/bramble/pkg/models"
)

type fakeReader struct {
	runs      []models.ResolutionRun
	lastLimit int
}

func (f *fakeReader) Get(_ context.Context, id string) (*models.ResolutionRun, error) {
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "resolution run %s not found", id)
}

func (f *fakeReader) Latest(context.Context) (*models.ResolutionRun, error) {
	for i := range f.runs {
		if f.runs[i].Status == models.RunStatusCompleted {
			return &f.runs[i], nil
		}
	}
	return nil, httperror.NewHTTPError(http.StatusNotFound, "no completed resolution run")
}

func (f *fakeReader) List(_ context.Context, limit int) ([]models.ResolutionRun, error) {
	f.lastLimit = limit
	return f.runs, nil
}

func newReader() *fakeReader {
	return &fakeReader{runs: []models.ResolutionRun{
		{ID: "run-3", Status: models.RunStatusFailed},
		{ID: "run-2", Status: models.RunStatusCompleted, RecordCount: 6, ClusterCount: 3},
		{ID: "run-1", Status: models.RunStatusCompleted},
	}}
}

func serve(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler(t *testing.T) {
	reader := newReader()
	e := echo.New()
	NewHandler(reader).Register(e.Group("/api/v1/runs"))

	t.Run("latest skips failed runs", func(t *testing.T) {
		rec := serve(e, "/api/v1/runs/latest")
		require.Equal(t, http.StatusOK, rec.Code)

		var run models.ResolutionRun
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
		assert.Equal(t, "run-2", run.ID)
		assert.Equal(t, 3, run.ClusterCount)
	})

	t.Run("by id", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(e, "/api/v1/runs/run-3").Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := serve(e, "/api/v1/runs?limit=2")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, reader.lastLimit)

		assert.Equal(t, http.StatusBadRequest, serve(e, "/api/v1/runs?limit=x").Code)
	})
}

func TestCurrent(t *testing.T) {
	reader := newReader()

	run, err := Current(context.Background(), reader)
	require.NoError(t, err)
	assert.Equal(t, "run-2", run.ID)

	run, err = Current(reqcontext.SetRunID(context.Background(), "run-1"), reader)
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)

	_, err = Current(reqcontext.SetRunID(context.Background(), "missing"), reader)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))

	_, err = Current(reqcontext.SetRunID(context.Background(), "run-3"), reader)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))

	reader.runs = append(reader.runs, models.ResolutionRun{ID: "run-4", Status: models.RunStatusRunning})
	_, err = Current(reqcontext.SetRunID(context.Background(), "run-4"), reader)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
}
