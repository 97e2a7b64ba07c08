package deviation

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

var (
	ErrMissingDefault   = errors.New("benchmark table has no Default entry")
	ErrInvalidBenchmark = errors.New("invalid benchmark")
)

// BenchmarkProvider supplies the current benchmark table.
type BenchmarkProvider interface {
	Benchmarks() BenchmarkTable
}

// StaticProvider serves a fixed table.
type StaticProvider struct {
	table BenchmarkTable
}

func NewStaticProvider(table BenchmarkTable) *StaticProvider {
	return &StaticProvider{table: table}
}

func (s *StaticProvider) Benchmarks() BenchmarkTable { return s.table }

// DefaultBenchmarks returns the built-in peer-group table.
func DefaultBenchmarks() BenchmarkTable {
	return BenchmarkTable{
		"Real Estate": {
			Count: 842,
			Metrics: map[MetricKey]MetricStats{
				MetricTokenPrice:        {Avg: 50, Std: 15, Unit: "$", HigherBetter: false},
				MetricInsiderAllocation: {Avg: 15, Std: 5, Unit: "%", HigherBetter: false},
				MetricYield:             {Avg: 6.5, Std: 1.2, Unit: "%", HigherBetter: true},
				MetricVotingPower:       {Avg: 20, Std: 10, Unit: "%", HigherBetter: true},
				MetricHardCap:           {Avg: 12000000, Std: 5000000, Unit: "$", HigherBetter: true},
			},
		},
		"Business": {
			Count: 315,
			Metrics: map[MetricKey]MetricStats{
				MetricTokenPrice:        {Avg: 10, Std: 5, Unit: "$", HigherBetter: false},
				MetricInsiderAllocation: {Avg: 25, Std: 8, Unit: "%", HigherBetter: false},
				MetricYield:             {Avg: 0, Std: 0, Unit: "%", HigherBetter: true},
				MetricVotingPower:       {Avg: 100, Std: 0, Unit: "%", HigherBetter: true},
				MetricHardCap:           {Avg: 5000000, Std: 2000000, Unit: "$", HigherBetter: true},
			},
		},
		DefaultAssetClass: {
			Count: 150,
			Metrics: map[MetricKey]MetricStats{
				MetricTokenPrice:        {Avg: 100, Std: 20, Unit: "$", HigherBetter: false},
				MetricInsiderAllocation: {Avg: 20, Std: 5, Unit: "%", HigherBetter: false},
				MetricYield:             {Avg: 5, Std: 2, Unit: "%", HigherBetter: true},
				MetricVotingPower:       {Avg: 50, Std: 25, Unit: "%", HigherBetter: true},
				MetricHardCap:           {Avg: 10000000, Std: 4000000, Unit: "$", HigherBetter: true},
			},
		},
	}
}

// Validate checks that Default exists and every entry carries all tracked
// metrics with finite, non-negative spreads.
func (t BenchmarkTable) Validate() error {
	if _, ok := t[DefaultAssetClass]; !ok {
		return ErrMissingDefault
	}

	var problems []string
	for _, class := range t.AssetClasses() {
		b := t[class]
		if b.Count < 0 {
			problems = append(problems, fmt.Sprintf("%s: negative count", class))
		}
		for _, k := range MetricKeys() {
			s, ok := b.Metrics[k]
			switch {
			case !ok:
				problems = append(problems, fmt.Sprintf("%s: missing %s", class, k))
			case math.IsNaN(s.Avg) || math.IsInf(s.Avg, 0):
				problems = append(problems, fmt.Sprintf("%s.%s: avg not finite", class, k))
			case math.IsNaN(s.Std) || math.IsInf(s.Std, 0) || s.Std < 0:
				problems = append(problems, fmt.Sprintf("%s.%s: std must be finite and >= 0", class, k))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidBenchmark, strings.Join(problems, "; "))
	}
	return nil
}

// AssetClasses lists the table's entries, sorted.
func (t BenchmarkTable) AssetClasses() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// lookup returns the entry for assetType, falling back to Default.
func (t BenchmarkTable) lookup(assetType string) (string, Benchmark) {
	if b, ok := t[assetType]; ok {
		return assetType, b
	}
	if b, ok := t[DefaultAssetClass]; ok {
		return DefaultAssetClass, b
	}
	return DefaultAssetClass, DefaultBenchmarks()[DefaultAssetClass]
}

type benchmarkFile struct {
	Benchmarks BenchmarkTable `yaml:"benchmarks"`
}

// ParseBenchmarks decodes and validates a YAML document of the form
//
//	benchmarks:
//	  Default:
//	    count: 150
//	    metrics:
//	      tokenPrice: {avg: 100, std: 20, unit: "$", higherBetter: false}
func ParseBenchmarks(data []byte) (BenchmarkTable, error) {
	var f benchmarkFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("parse benchmarks: %w", err)
	}
	if err := f.Benchmarks.Validate(); err != nil {
		return nil, err
	}
	return f.Benchmarks, nil
}

// LoadBenchmarks reads and validates a benchmark YAML file.
func LoadBenchmarks(path string) (BenchmarkTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read benchmarks %s: %w", path, err)
	}
	t, err := ParseBenchmarks(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
