package deviation

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tokenized_valuation/pkg/core/metrics"
)

var realEstateAverages = ProjectValues{TokenPrice: 50, InsiderAllocation: 15, Yield: 6.5, VotingPower: 20, HardCap: 12000000}

func TestAnalyzeDeviation_AtAverages(t *testing.T) {
	e := NewEngine(nil)
	r := e.AnalyzeDeviation("Real Estate", realEstateAverages)

	assert.Equal(t, 0, r.OverallDeviationScore)
	assert.Equal(t, RiskLow, r.RiskLabel)
	assert.Empty(t, r.Anomalies)
	assert.Equal(t, 842, r.PeerGroupCount)
	assert.Equal(t, "Real Estate", r.AssetClass)

	require.Len(t, r.Metrics, 5)
	labels := []string{"Token Price", "Insider Allocation", "Projected Yield", "Voting Rights", "Hard Cap"}
	categories := []Category{CategoryTokenomics, CategoryTokenomics, CategoryFinancial, CategoryGovernance, CategoryFinancial}
	for i, m := range r.Metrics {
		assert.Equal(t, labels[i], m.Label)
		assert.Equal(t, categories[i], m.Category)
		assert.Equal(t, m.MarketAvg, m.MyValue)
		assert.Equal(t, 0.0, m.ZScore)
		assert.Equal(t, BandWithin, m.Band)
		assert.True(t, m.Favorable)
	}
	assert.Equal(t, "$", r.Metrics[0].Unit)
	assert.False(t, r.Metrics[0].IsHigherBetter)
	assert.True(t, r.Metrics[2].IsHigherBetter)
}

func TestAnalyzeDeviation_UnknownClassUsesDefault(t *testing.T) {
	r := NewEngine(nil).AnalyzeDeviation("Art & Collectibles", ProjectValues{TokenPrice: 100, InsiderAllocation: 20, Yield: 5, VotingPower: 50, HardCap: 10000000})
	assert.Equal(t, DefaultAssetClass, r.AssetClass)
	assert.Equal(t, 150, r.PeerGroupCount)
	assert.Equal(t, 0, r.OverallDeviationScore)
}

func TestAnalyzeDeviation_AnomalyThreshold(t *testing.T) {
	const eps = 1e-6
	table := DefaultBenchmarks()

	above := realEstateAverages
	above.TokenPrice = 50 + 2*15 + eps
	r := AnalyzeDeviation(table, "Real Estate", above, ZeroStdSaturate)
	assert.Equal(t, []string{"Token Price is significantly HIGHER than market average (50$)."}, r.Anomalies)
	assert.Equal(t, BandAnomalous, r.Metrics[0].Band)

	inside := realEstateAverages
	inside.TokenPrice = 50 + 2*15 - eps
	r = AnalyzeDeviation(table, "Real Estate", inside, ZeroStdSaturate)
	assert.Empty(t, r.Anomalies)
	assert.Equal(t, BandElevated, r.Metrics[0].Band)

	below := realEstateAverages
	below.Yield = 6.5 - 2*1.2 - eps
	r = AnalyzeDeviation(table, "Real Estate", below, ZeroStdSaturate)
	assert.Equal(t, []string{"Projected Yield is significantly LOWER than market average (6.5%)."}, r.Anomalies)
}

func TestAnalyzeDeviation_AnomaliesIgnorePolarity(t *testing.T) {
	v := realEstateAverages
	v.Yield = 20    // favorable but anomalous
	v.HardCap = 100 // unfavorable and anomalous
	r := NewEngine(nil).AnalyzeDeviation("Real Estate", v)

	assert.Equal(t, []string{
		"Projected Yield is significantly HIGHER than market average (6.5%).",
		"Hard Cap is significantly LOWER than market average (12000000$).",
	}, r.Anomalies)
	assert.True(t, r.Metrics[2].Favorable)
	assert.False(t, r.Metrics[4].Favorable)
}

func TestAnalyzeDeviation_Score(t *testing.T) {
	v := realEstateAverages
	v.TokenPrice = 80 // z = 2, mean z = 0.4
	r := AnalyzeDeviation(DefaultBenchmarks(), "Real Estate", v, ZeroStdSaturate)
	assert.Equal(t, 13, r.OverallDeviationScore)
	assert.Equal(t, RiskLow, r.RiskLabel)
	assert.InDelta(t, 2.0, r.Metrics[0].ZScore, 1e-9)

	// every metric at z = 3
	v = ProjectValues{TokenPrice: 95, InsiderAllocation: 30, Yield: 10.1, VotingPower: 50, HardCap: 27000000}
	r = AnalyzeDeviation(DefaultBenchmarks(), "Real Estate", v, ZeroStdSaturate)
	assert.Equal(t, 99, r.OverallDeviationScore)
	assert.Equal(t, RiskCritical, r.RiskLabel)

	v = ProjectValues{TokenPrice: 1e9, HardCap: -1e12}
	r = AnalyzeDeviation(DefaultBenchmarks(), "Real Estate", v, ZeroStdSaturate)
	assert.Equal(t, 100, r.OverallDeviationScore)
}

func TestAnalyzeDeviation_ScoreAlwaysInRange(t *testing.T) {
	values := []float64{-1e15, -100, -1, 0, 0.5, 7, 99, 1e3, 1e15}
	for _, policy := range []ZeroStdPolicy{ZeroStdSaturate, ZeroStdExclude, ZeroStdStrict} {
		for _, class := range []string{"Real Estate", "Business", "Unknown"} {
			for _, x := range values {
				r := AnalyzeDeviation(DefaultBenchmarks(), class, ProjectValues{TokenPrice: x, InsiderAllocation: x, Yield: x, VotingPower: x, HardCap: x}, policy)
				assert.GreaterOrEqual(t, r.OverallDeviationScore, 0)
				assert.LessOrEqual(t, r.OverallDeviationScore, 100)
				assert.Equal(t, LabelForScore(r.OverallDeviationScore), r.RiskLabel)
			}
		}
	}
}

func TestLabelForScore_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  RiskLabel
	}{
		{0, RiskLow}, {25, RiskLow}, {26, RiskMedium}, {50, RiskMedium},
		{51, RiskHigh}, {75, RiskHigh}, {76, RiskCritical}, {100, RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelForScore(tt.score), "score %d", tt.score)
	}
}

func TestZeroStdPolicies(t *testing.T) {
	atAvg := ProjectValues{TokenPrice: 10, InsiderAllocation: 25, Yield: 0, VotingPower: 100, HardCap: 5000000}
	offYield := atAvg
	offYield.Yield = 5

	tests := []struct {
		name   string
		policy ZeroStdPolicy
		values ProjectValues
		score  int
	}{
		{"saturate at avg", ZeroStdSaturate, atAvg, 0},
		{"saturate off avg", ZeroStdSaturate, offYield, 20},
		{"exclude at avg", ZeroStdExclude, atAvg, 0},
		{"exclude off avg", ZeroStdExclude, offYield, 0},
		{"strict at avg", ZeroStdStrict, atAvg, 100},
		{"strict off avg", ZeroStdStrict, offYield, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := AnalyzeDeviation(DefaultBenchmarks(), "Business", tt.values, tt.policy)
			assert.Equal(t, tt.score, r.OverallDeviationScore)
			assert.Equal(t, 315, r.PeerGroupCount)
		})
	}

	// anomaly and display z do not depend on policy
	r := AnalyzeDeviation(DefaultBenchmarks(), "Business", offYield, ZeroStdExclude)
	assert.Equal(t, []string{"Projected Yield is significantly HIGHER than market average (0%)."}, r.Anomalies)
	assert.Equal(t, SaturatedZ, r.Metrics[2].ZScore)
}

func TestParseZeroStdPolicy(t *testing.T) {
	p, err := ParseZeroStdPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ZeroStdSaturate, p)

	p, err = ParseZeroStdPolicy("exclude")
	require.NoError(t, err)
	assert.Equal(t, ZeroStdExclude, p)

	_, err = ParseZeroStdPolicy("ignore")
	assert.Error(t, err)
}

func TestEngine_Metrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	e := NewEngine(nil, WithMetrics(m), WithLogger(zaptest.NewLogger(t)), WithZeroStdPolicy(ZeroStdExclude))
	assert.Equal(t, ZeroStdExclude, e.Policy())

	e.AnalyzeDeviation("Nowhere", ProjectValues{})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeviationAnalyses.WithLabelValues(DefaultAssetClass, string(RiskCritical))))
}

func TestAnalyzeDeviation_TableWithoutDefault(t *testing.T) {
	table := BenchmarkTable{"Only": DefaultBenchmarks()["Business"]}
	r := AnalyzeDeviation(table, "Missing", realEstateAverages, ZeroStdSaturate)
	assert.Equal(t, DefaultAssetClass, r.AssetClass)
	assert.Equal(t, 150, r.PeerGroupCount)
}
