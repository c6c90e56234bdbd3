package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAccumulate(t *testing.T) {
	m := New()

	m.CheckIn("success", 2)
	m.CheckIn("already_checked_in", 1)
	m.BatchItems("round_results", 4, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkins.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkins.WithLabelValues("already_checked_in")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.batchItems.WithLabelValues("round_results", "recorded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchItems.WithLabelValues("round_results", "failed")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CheckIn("success", 1)
		m.BatchItems("prizes", 1, 0)
		m.CacheLookup("events", true)
		m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.CacheLookup("round_results", false)
	m.ObserveHTTP("POST", "/api/v1/teams", 201, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `fest_cache_lookups_total{cache="round_results",result="miss"} 1`)
	assert.Contains(t, string(body), "fest_http_request_duration_seconds_bucket")
}
