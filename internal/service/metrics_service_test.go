package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsLedgerCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordLedgerOperation("record_grade", "ok")
	m.RecordLedgerOperation("record_grade", "ok")
	m.RecordLedgerOperation("enroll", "ALREADY_ENROLLED")
	m.RecordGPAWrite()
	m.AddNotifications(3)
	m.RecordCacheOperation(true, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ledgerOps.WithLabelValues("record_grade", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ledgerOps.WithLabelValues("enroll", "ALREADY_ENROLLED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gpaWrites))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.notifications))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
}

func TestMetricsHandlerServesExposition(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/grades", http.StatusOK, 5*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.RecordLedgerOperation("enroll", "ok")
	m.RecordGPAWrite()
	m.AddNotifications(1)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
