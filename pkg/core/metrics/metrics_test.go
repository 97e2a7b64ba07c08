package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOracle("appraiser", OutcomeOK, time.Second)
		m.ObserveValuation("cap_rate")
		m.ObserveStage("compute", time.Millisecond)
		m.ObserveDeviation("Default", "Low")
		m.ObserveReload(true)
	})
	assert.NotNil(t, m.Handler())
}

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOracle("Senior Appraiser", OutcomeFallback, 10*time.Millisecond)
	m.ObserveOracle("Senior Appraiser", OutcomeFallback, 10*time.Millisecond)
	m.ObserveValuation("dcf_light")
	m.ObserveDeviation("Real Estate", "Low")
	m.ObserveReload(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OracleCalls.WithLabelValues("Senior Appraiser", OutcomeFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Valuations.WithLabelValues("dcf_light")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeviationAnalyses.WithLabelValues("Real Estate", "Low")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BenchmarkReloads.WithLabelValues("error")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveValuation("cap_rate")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "tokenized_valuation_valuations_total"))
}
