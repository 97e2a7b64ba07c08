package deviation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenized_valuation/pkg/core/deviation"
)

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(deviation.NewEngine(nil), nil).Register(mux)
	return mux
}

func TestHandleAnalyze(t *testing.T) {
	body := `{"assetType": "Real Estate", "values": {"tokenPrice": 50, "insiderAllocation": 15, "yield": 6.5, "votingPower": 20, "hardCap": 12000000}}`
	rec := httptest.NewRecorder()
	newMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/deviation/analyze", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var report deviation.DeviationReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, 0, report.OverallDeviationScore)
	assert.Equal(t, deviation.RiskLow, report.RiskLabel)
	assert.Empty(t, report.Anomalies)
	assert.Equal(t, 842, report.PeerGroupCount)
	assert.Len(t, report.Metrics, 5)
}

func TestHandleAnalyze_Anomalous(t *testing.T) {
	body := `{"assetType": "Real Estate", "values": {"tokenPrice": 500, "insiderAllocation": 60, "yield": 6.5, "votingPower": 20, "hardCap": 12000000}}`
	rec := httptest.NewRecorder()
	newMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/deviation/analyze", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var report deviation.DeviationReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Len(t, report.Anomalies, 2)
	assert.Equal(t, deviation.RiskCritical, report.RiskLabel)
}

func TestHandleAnalyze_BadRequests(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/deviation/analyze", strings.NewReader("[")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	newMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/deviation/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleBenchmarks(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/deviation/benchmarks", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp BenchmarksResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, deviation.ZeroStdSaturate, resp.ZeroStdPolicy)
	assert.Equal(t, 315, resp.Benchmarks["Business"].Count)
	assert.Equal(t, 6.5, resp.Benchmarks["Real Estate"].Metrics[deviation.MetricYield].Avg)
}
