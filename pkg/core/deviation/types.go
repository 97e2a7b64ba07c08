package deviation

type Category string

const (
	CategoryFinancial  Category = "Financial"
	CategoryTokenomics Category = "Tokenomics"
	CategoryGovernance Category = "Governance"
)

// RiskLabel buckets the overall deviation score.
type RiskLabel string

const (
	RiskLow      RiskLabel = "Low"
	RiskMedium   RiskLabel = "Medium"
	RiskHigh     RiskLabel = "High"
	RiskCritical RiskLabel = "Critical"
)

// MetricKey names a tracked benchmark axis.
type MetricKey string

const (
	MetricTokenPrice        MetricKey = "tokenPrice"
	MetricInsiderAllocation MetricKey = "insiderAllocation"
	MetricYield             MetricKey = "yield"
	MetricVotingPower       MetricKey = "votingPower"
	MetricHardCap           MetricKey = "hardCap"
)

type metricDef struct {
	key      MetricKey
	label    string
	category Category
}

// metricDefs is the fixed processing order.
var metricDefs = []metricDef{
	{MetricTokenPrice, "Token Price", CategoryTokenomics},
	{MetricInsiderAllocation, "Insider Allocation", CategoryTokenomics},
	{MetricYield, "Projected Yield", CategoryFinancial},
	{MetricVotingPower, "Voting Rights", CategoryGovernance},
	{MetricHardCap, "Hard Cap", CategoryFinancial},
}

// MetricKeys lists the tracked metrics in processing order.
func MetricKeys() []MetricKey {
	keys := make([]MetricKey, len(metricDefs))
	for i, d := range metricDefs {
		keys[i] = d.key
	}
	return keys
}

// ProjectValues are the deal parameters submitted for benchmarking.
type ProjectValues struct {
	TokenPrice        float64 `json:"tokenPrice"`
	InsiderAllocation float64 `json:"insiderAllocation"`
	Yield             float64 `json:"yield"`
	VotingPower       float64 `json:"votingPower"`
	HardCap           float64 `json:"hardCap"`
}

func (v ProjectValues) get(k MetricKey) float64 {
	switch k {
	case MetricTokenPrice:
		return v.TokenPrice
	case MetricInsiderAllocation:
		return v.InsiderAllocation
	case MetricYield:
		return v.Yield
	case MetricVotingPower:
		return v.VotingPower
	case MetricHardCap:
		return v.HardCap
	}
	return 0
}

// MetricStats is the peer-group distribution of one metric.
type MetricStats struct {
	Avg          float64 `yaml:"avg" json:"avg"`
	Std          float64 `yaml:"std" json:"std"`
	Unit         string  `yaml:"unit" json:"unit"`
	HigherBetter bool    `yaml:"higherBetter" json:"higherBetter"`
}

// Benchmark is one asset class's peer group.
type Benchmark struct {
	Count   int                       `yaml:"count" json:"count"`
	Metrics map[MetricKey]MetricStats `yaml:"metrics" json:"metrics"`
}

// BenchmarkTable maps asset class to peer group. It must contain
// DefaultAssetClass and is treated as read-only once built.
type BenchmarkTable map[string]Benchmark

// DefaultAssetClass is used for asset classes missing from the table.
const DefaultAssetClass = "Default"

// Band places a metric relative to the peer distribution.
type Band string

const (
	BandWithin    Band = "within"    // |z| <= 1.5
	BandElevated  Band = "elevated"  // 1.5 < |z| <= 2
	BandAnomalous Band = "anomalous" // |z| > 2
)

// BenchmarkMetric pairs a submitted value with its peer statistics. ZScore,
// Band and Favorable are interpretation only; they do not feed the anomaly
// list or the overall score.
type BenchmarkMetric struct {
	Label          string   `json:"label"`
	MyValue        float64  `json:"myValue"`
	MarketAvg      float64  `json:"marketAvg"`
	MarketStdDev   float64  `json:"marketStdDev"`
	Unit           string   `json:"unit"`
	Category       Category `json:"category"`
	IsHigherBetter bool     `json:"isHigherBetter"`
	ZScore         float64  `json:"zScore"`
	Band           Band     `json:"band"`
	Favorable      bool     `json:"favorable"`
}

type DeviationReport struct {
	OverallDeviationScore int               `json:"overallDeviationScore"` // 0..100
	RiskLabel             RiskLabel         `json:"riskLabel"`
	Metrics               []BenchmarkMetric `json:"metrics"`
	Anomalies             []string          `json:"anomalies"`
	PeerGroupCount        int               `json:"peerGroupCount"`
	AssetClass            string            `json:"assetClass"` // benchmark entry actually used
}
