package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/jobs"
)

func TestMetricsServiceExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/competency/overview", http.StatusOK, 20*time.Millisecond)
	m.ObserveRecalculation("job", nil, time.Millisecond)
	m.ObserveRecalculation("manual", errors.New("db down"), time.Millisecond)
	m.IncRateLimited()
	m.RegisterQueue("recalculation", func() jobs.Stats { return jobs.Stats{Pending: 4, Processed: 9} })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "competency_http_requests_total")
	assert.Contains(t, body, `competency_recalculations_total{outcome="error",trigger="manual"} 1`)
	assert.Contains(t, body, `competency_queue_pending{queue="recalculation"} 4`)
	assert.Contains(t, body, "competency_login_rate_limited_total 1")

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.Equal(t, uint64(2), snap.Recalculations)
	assert.Equal(t, uint64(1), snap.RecalculationFailures)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.01)
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.IncRateLimited()
	assert.Zero(t, m.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
