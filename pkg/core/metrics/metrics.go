// Package metrics holds the Prometheus instruments for the valuation and
// benchmarking engines. Every method is safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tokenized_valuation"

// Oracle call outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeTimeout  = "timeout"
	OutcomePanic    = "panic"
)

// Metrics bundles all collectors registered by the service.
type Metrics struct {
	OracleCalls       *prometheus.CounterVec
	OracleLatency     *prometheus.HistogramVec
	Valuations        *prometheus.CounterVec
	ValuationDuration *prometheus.HistogramVec
	DeviationAnalyses *prometheus.CounterVec
	BenchmarkReloads  *prometheus.CounterVec
	BenchmarkLoadedAt prometheus.Gauge
	gatherer          prometheus.Gatherer
}

// New registers the collectors on reg. Passing a fresh prometheus.NewRegistry()
// keeps tests independent of the global default registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OracleCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_calls_total",
			Help:      "Oracle calls by role and outcome.",
		}, []string{"role", "outcome"}),
		OracleLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_call_duration_seconds",
			Help:      "Oracle call latency by role.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"role"}),
		Valuations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "valuations_total",
			Help:      "Computed valuations by model.",
		}, []string{"model"}),
		ValuationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "valuation_duration_seconds",
			Help:      "Valuation workflow stage duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		DeviationAnalyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deviation_analyses_total",
			Help:      "Deviation analyses by benchmark entry and risk label.",
		}, []string{"asset_class", "risk"}),
		BenchmarkReloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "benchmark_reloads_total",
			Help:      "Benchmark table reload attempts by result.",
		}, []string{"result"}),
		BenchmarkLoadedAt: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "benchmark_loaded_timestamp_seconds",
			Help:      "Unix time of the last successful benchmark table load.",
		}),
		gatherer: reg,
	}
}

// Handler exposes the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveOracle(role, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.OracleCalls.WithLabelValues(role, outcome).Inc()
	m.OracleLatency.WithLabelValues(role).Observe(d.Seconds())
}

func (m *Metrics) ObserveValuation(model string) {
	if m == nil {
		return
	}
	m.Valuations.WithLabelValues(model).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.ValuationDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) ObserveDeviation(assetClass, risk string) {
	if m == nil {
		return
	}
	m.DeviationAnalyses.WithLabelValues(assetClass, risk).Inc()
}

func (m *Metrics) ObserveReload(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.BenchmarkReloads.WithLabelValues("ok").Inc()
		m.BenchmarkLoadedAt.SetToCurrentTime()
		return
	}
	m.BenchmarkReloads.WithLabelValues("error").Inc()
}
