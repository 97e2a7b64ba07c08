package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tokenized_valuation/pkg/core/config"
	"tokenized_valuation/pkg/core/deviation"
	"tokenized_valuation/pkg/core/valuation"
)

const benchmarksYAML = `
benchmarks:
  Default:
    count: 7
    metrics:
      tokenPrice: {avg: 100, std: 20, unit: "$"}
      insiderAllocation: {avg: 20, std: 5, unit: "%"}
      yield: {avg: 5, std: 2, unit: "%", higherBetter: true}
      votingPower: {avg: 50, std: 25, unit: "%", higherBetter: true}
      hardCap: {avg: 10000000, std: 4000000, unit: "$", higherBetter: true}
`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Addr: ":0"},
		Oracle: config.OracleConfig{
			Mode:    config.OracleModeStatic,
			Timeout: time.Second,
			StaticResponses: map[string]string{
				"senior_appraiser": `{"estimatedNOI": 450000, "marketCapRate": 5, "discountRate": 8, "growthRateIncome": 2.5, "growthRateExpenses": 2, "exitYield": 6, "vacancyRate": 4}`,
			},
		},
		Valuation: config.ValuationConfig{Currency: "EUR"},
		Deviation: config.DeviationConfig{ZeroStdPolicy: "saturate"},
		Metrics:   config.MetricsConfig{Enabled: true},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	a, err := New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestApp_ReportUsesStaticOracle(t *testing.T) {
	a := newTestApp(t, testConfig())
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	body := `{"name": "Harbor Point", "assetType": "Real Estate", "status": "Stabilized"}`
	resp, err := http.Post(srv.URL+"/api/valuation/report", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report valuation.ValuationReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 9000000.0, report.Valuation.ValueCentral)
	assert.Equal(t, "EUR", report.Valuation.Currency)
	assert.Equal(t, valuation.SourceAI, report.Assumptions.Sources[valuation.FieldEstimatedNOI])
	// no banker response configured
	assert.Equal(t, valuation.FallbackNarrative(), report.Narrative)
}

func TestApp_HealthAndMetrics(t *testing.T) {
	a := newTestApp(t, testConfig())
	h := a.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(out), "go_goroutines")
}

func TestApp_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	a := newTestApp(t, cfg)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApp_BenchmarksFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmarks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(benchmarksYAML), 0o644))

	cfg := testConfig()
	cfg.Deviation.BenchmarksFile = path
	cfg.Deviation.ReloadCron = "@every 1h"
	cfg.Deviation.ZeroStdPolicy = "exclude"
	a := newTestApp(t, cfg)

	assert.Equal(t, deviation.ZeroStdExclude, a.Deviation.Policy())
	report := a.Deviation.AnalyzeDeviation("Real Estate", deviation.ProjectValues{})
	assert.Equal(t, deviation.DefaultAssetClass, report.AssetClass)
	assert.Equal(t, 7, report.PeerGroupCount)
}

func TestApp_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.Deviation.BenchmarksFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(cfg, nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Oracle.Mode = config.OracleModeLLM
	cfg.LLM.ActiveProvider = "nope"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestApp_MCPServer(t *testing.T) {
	a := newTestApp(t, testConfig())
	assert.NotNil(t, a.MCPServer("test"))
}
