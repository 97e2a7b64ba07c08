package deviation

import (
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tokenized_valuation/pkg/core/metrics"
)

// ReloadingProvider serves a benchmark table read from a YAML file and
// re-reads it on a cron schedule. A failed reload keeps the last good table.
type ReloadingProvider struct {
	path    string
	current atomic.Pointer[BenchmarkTable]
	cron    *cron.Cron
	log     *zap.Logger
	metrics *metrics.Metrics
}

type ProviderOption func(*ReloadingProvider)

func WithProviderLogger(l *zap.Logger) ProviderOption {
	return func(p *ReloadingProvider) {
		if l != nil {
			p.log = l
		}
	}
}

func WithProviderMetrics(m *metrics.Metrics) ProviderOption {
	return func(p *ReloadingProvider) { p.metrics = m }
}

// NewReloadingProvider loads path once; the initial load must succeed.
func NewReloadingProvider(path string, opts ...ProviderOption) (*ReloadingProvider, error) {
	p := &ReloadingProvider{path: path, log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.Named("benchmarks")

	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ReloadingProvider) Benchmarks() BenchmarkTable {
	return *p.current.Load()
}

// Reload re-reads the file and swaps the table in on success.
func (p *ReloadingProvider) Reload() error {
	table, err := LoadBenchmarks(p.path)
	if err != nil {
		p.metrics.ObserveReload(false)
		if p.current.Load() != nil {
			p.log.Warn("benchmark reload failed, keeping previous table", zap.String("path", p.path), zap.Error(err))
		}
		return err
	}
	p.current.Store(&table)
	p.metrics.ObserveReload(true)
	p.log.Info("benchmarks loaded", zap.String("path", p.path), zap.Strings("asset_classes", table.AssetClasses()))
	return nil
}

// Start schedules Reload with a standard 5-field cron spec or a descriptor
// such as "@every 10m".
func (p *ReloadingProvider) Start(spec string) error {
	if p.cron != nil {
		return fmt.Errorf("benchmark reloader already started")
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { _ = p.Reload() }); err != nil {
		return fmt.Errorf("schedule benchmark reload %q: %w", spec, err)
	}
	p.cron = c
	c.Start()
	p.log.Info("benchmark reload scheduled", zap.String("spec", spec))
	return nil
}

// Stop halts the schedule and waits for a running reload to finish.
func (p *ReloadingProvider) Stop() {
	if p.cron == nil {
		return
	}
	<-p.cron.Stop().Done()
	p.cron = nil
}
