package jobs

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func serveHealth(t *testing.T, inspector QueueInspector) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(inspector, nil).MountRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	return rec
}

func TestHealthWithoutInspector(t *testing.T) {
	rec := serveHealth(t, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"scheduled":0,"retry":0,"archived":0,"paused":false,"latency_seconds":0}`, rec.Body.String())
}

func TestHealthReportsQueueInfo(t *testing.T) {
	rec := serveHealth(t, stubInspector{info: &asynq.QueueInfo{
		Queue:     QueueDefault,
		Pending:   4,
		Active:    1,
		Scheduled: 2,
		Retry:     3,
		Latency:   1500 * time.Millisecond,
	}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":4,"active":1,"scheduled":2,"retry":3,"archived":0,"paused":false,"latency_seconds":1.5}`, rec.Body.String())
}

func TestHealthInspectorFailure(t *testing.T) {
	rec := serveHealth(t, stubInspector{err: errors.New("redis down")})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}
