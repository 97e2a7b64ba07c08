// Package deviation scores a deal's tokenomics against peer-group benchmarks.
//
// Each tracked metric is compared with its asset class's average and standard
// deviation. Values more than two standard deviations away produce anomaly
// statements, and the mean absolute z-score maps linearly onto a 0-100
// deviation score clamped to 100.
package deviation

import (
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"tokenized_valuation/pkg/core/metrics"
)

const (
	anomalyZ  = 2.0
	elevatedZ = 1.5
	scorePerZ = 33.0
	maxScore  = 100

	// SaturatedZ is the z-score assigned to any deviation from a zero-spread
	// benchmark under ZeroStdSaturate. It maps to a score of 99.
	SaturatedZ = 3.0
)

// ZeroStdPolicy decides how a metric whose benchmark std is 0 contributes to
// the overall score.
type ZeroStdPolicy string

const (
	// ZeroStdSaturate scores z=0 for an exact match and SaturatedZ otherwise.
	ZeroStdSaturate ZeroStdPolicy = "saturate"
	// ZeroStdExclude leaves the metric out of the average.
	ZeroStdExclude ZeroStdPolicy = "exclude"
	// ZeroStdStrict divides by zero; a non-finite average scores 100.
	ZeroStdStrict ZeroStdPolicy = "strict"
)

// ParseZeroStdPolicy validates a policy name. Empty means ZeroStdSaturate.
func ParseZeroStdPolicy(s string) (ZeroStdPolicy, error) {
	switch p := ZeroStdPolicy(s); p {
	case "":
		return ZeroStdSaturate, nil
	case ZeroStdSaturate, ZeroStdExclude, ZeroStdStrict:
		return p, nil
	default:
		return "", fmt.Errorf("unknown zero-std policy %q", s)
	}
}

type Engine struct {
	provider BenchmarkProvider
	policy   ZeroStdPolicy
	log      *zap.Logger
	metrics  *metrics.Metrics
}

type Option func(*Engine)

func WithZeroStdPolicy(p ZeroStdPolicy) Option {
	return func(e *Engine) {
		if p != "" {
			e.policy = p
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine builds an engine over provider; nil uses DefaultBenchmarks.
func NewEngine(provider BenchmarkProvider, opts ...Option) *Engine {
	if provider == nil {
		provider = NewStaticProvider(DefaultBenchmarks())
	}
	e := &Engine{provider: provider, policy: ZeroStdSaturate, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("deviation")
	return e
}

// Benchmarks returns the table currently in use.
func (e *Engine) Benchmarks() BenchmarkTable { return e.provider.Benchmarks() }

// Policy reports the configured zero-std policy.
func (e *Engine) Policy() ZeroStdPolicy { return e.policy }

// AnalyzeDeviation scores values against the current benchmark table.
func (e *Engine) AnalyzeDeviation(assetType string, values ProjectValues) DeviationReport {
	r := AnalyzeDeviation(e.provider.Benchmarks(), assetType, values, e.policy)
	if r.AssetClass != assetType {
		e.log.Debug("unknown asset class, using default benchmarks", zap.String("asset_type", assetType))
	}
	e.metrics.ObserveDeviation(r.AssetClass, string(r.RiskLabel))
	return r
}

// AnalyzeDeviation is the pure scoring function behind Engine.AnalyzeDeviation.
func AnalyzeDeviation(table BenchmarkTable, assetType string, values ProjectValues, policy ZeroStdPolicy) DeviationReport {
	class, bench := table.lookup(assetType)

	report := DeviationReport{
		Metrics:        make([]BenchmarkMetric, 0, len(metricDefs)),
		Anomalies:      []string{},
		PeerGroupCount: bench.Count,
		AssetClass:     class,
	}

	var sumZ float64
	var counted int
	for _, def := range metricDefs {
		stats := bench.Metrics[def.key]
		value := values.get(def.key)

		report.Metrics = append(report.Metrics, newBenchmarkMetric(def, value, stats))
		if msg, ok := anomaly(def.label, value, stats); ok {
			report.Anomalies = append(report.Anomalies, msg)
		}

		z, ok := scoringZ(value, stats, policy)
		if !ok {
			continue
		}
		sumZ += z
		counted++
	}

	var avgZ float64
	if counted > 0 {
		avgZ = sumZ / float64(counted)
	}
	report.OverallDeviationScore = scoreFromZ(avgZ)
	report.RiskLabel = LabelForScore(report.OverallDeviationScore)
	return report
}

func newBenchmarkMetric(def metricDef, value float64, stats MetricStats) BenchmarkMetric {
	z := signedZ(value, stats)
	band := BandWithin
	switch abs := math.Abs(z); {
	case abs > anomalyZ:
		band = BandAnomalous
	case abs > elevatedZ:
		band = BandElevated
	}

	favorable := true
	switch {
	case value > stats.Avg:
		favorable = stats.HigherBetter
	case value < stats.Avg:
		favorable = !stats.HigherBetter
	}

	return BenchmarkMetric{
		Label:          def.label,
		MyValue:        value,
		MarketAvg:      stats.Avg,
		MarketStdDev:   stats.Std,
		Unit:           stats.Unit,
		Category:       def.category,
		IsHigherBetter: stats.HigherBetter,
		ZScore:         z,
		Band:           band,
		Favorable:      favorable,
	}
}

// anomaly applies the symmetric ±2σ band; polarity is ignored.
func anomaly(label string, value float64, stats MetricStats) (string, bool) {
	var direction string
	switch {
	case value > stats.Avg+anomalyZ*stats.Std:
		direction = "HIGHER"
	case value < stats.Avg-anomalyZ*stats.Std:
		direction = "LOWER"
	default:
		return "", false
	}
	return fmt.Sprintf("%s is significantly %s than market average (%s%s).",
		label, direction, strconv.FormatFloat(stats.Avg, 'f', -1, 64), stats.Unit), true
}

// signedZ is the finite, display-only z-score. A zero spread saturates.
func signedZ(value float64, stats MetricStats) float64 {
	diff := value - stats.Avg
	if stats.Std > 0 {
		return diff / stats.Std
	}
	switch {
	case diff > 0:
		return SaturatedZ
	case diff < 0:
		return -SaturatedZ
	}
	return 0
}

// scoringZ returns |z| for the aggregate and whether the metric counts.
func scoringZ(value float64, stats MetricStats, policy ZeroStdPolicy) (float64, bool) {
	diff := math.Abs(value - stats.Avg)
	if stats.Std > 0 {
		return diff / stats.Std, true
	}
	switch policy {
	case ZeroStdExclude:
		return 0, false
	case ZeroStdStrict:
		return diff / stats.Std, true
	default:
		if diff == 0 {
			return 0, true
		}
		return SaturatedZ, true
	}
}

// scoreFromZ maps the mean |z| onto 0..100, rounding half up.
func scoreFromZ(avgZ float64) int {
	if math.IsNaN(avgZ) || math.IsInf(avgZ, 0) {
		return maxScore
	}
	score := math.Floor(avgZ*scorePerZ + 0.5)
	if score > maxScore {
		return maxScore
	}
	if score < 0 {
		return 0
	}
	return int(score)
}

// LabelForScore maps a score to its risk bucket; thresholds are exclusive.
func LabelForScore(score int) RiskLabel {
	switch {
	case score > 75:
		return RiskCritical
	case score > 50:
		return RiskHigh
	case score > 25:
		return RiskMedium
	default:
		return RiskLow
	}
}
