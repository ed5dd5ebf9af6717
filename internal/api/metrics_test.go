// internal/api/metrics_test.go
package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/FairForge/lifesync/internal/simulator"
)

var _ simulator.Observer = (*Metrics)(nil)

func TestMetrics_Observer(t *testing.T) {
	m := NewMetrics()

	m.PredictionMade()
	m.PredictionMade()
	m.ReportBuilt(120*time.Millisecond, nil)
	m.ReportBuilt(0, errors.New("render failed"))
	m.HistoryFailed()
	m.ReportCacheLookup(true)
	m.ReportCacheLookup(false)
	m.ReportCacheLookup(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Predictions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HistoryFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ReportDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.IncrementRequest("GET", "/test", 200)
	m.RecordLatency("GET", "/test", 0.5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `lifesync_requests_total{method="GET",route="/test",status="200"} 1`)
	assert.Contains(t, body, "lifesync_request_duration_seconds")
	assert.Contains(t, body, "go_goroutines")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	m1 := NewMetrics()
	m2 := NewMetrics()

	m1.PredictionMade()
	assert.Equal(t, 1.0, testutil.ToFloat64(m1.Predictions))
	assert.Equal(t, 0.0, testutil.ToFloat64(m2.Predictions))
}
