// Package valuation selects a valuation model for a tokenized asset, derives
// its assumptions, computes a point value with a fixed ±10% band and asks an
// external oracle for an investor narrative.
//
// The arithmetic (RunValuation, Recalculate) is pure. Only BuildAssumptions
// and ExplainToInvestor reach the oracle, and both fall back to fixed values
// instead of failing.
package valuation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tokenized_valuation/pkg/core/metrics"
	"tokenized_valuation/pkg/core/oracle"
	"tokenized_valuation/pkg/core/prompt"
)

type Engine struct {
	guard    *oracle.Guard
	prompts  *prompt.Registry
	log      *zap.Logger
	metrics  *metrics.Metrics
	currency string
	now      func() time.Time
	newID    func() string
}

type Option func(*Engine)

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

// WithCurrency sets the ISO 4217 code stamped on results.
func WithCurrency(code string) Option {
	return func(e *Engine) {
		if code != "" {
			e.currency = strings.ToUpper(code)
		}
	}
}

// WithPrompts replaces the embedded prompt library.
func WithPrompts(r *prompt.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.prompts = r
		}
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine builds an engine around guard. A nil guard means every oracle
// call falls back.
func NewEngine(guard *oracle.Guard, opts ...Option) *Engine {
	e := &Engine{
		guard:    guard,
		prompts:  prompt.MustDefault(),
		log:      zap.NewNop(),
		currency: DefaultCurrency,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("valuation")
	return e
}

// Currency reports the engine's currency code.
func (e *Engine) Currency() string { return e.currency }

// RunValuation computes a valuation in the engine's currency.
func (e *Engine) RunValuation(a ValuationAssumptions, p ProjectContext) ValuationResultOutput {
	out := runValuation(a, p, e.currency)
	e.metrics.ObserveValuation(string(out.ModelUsed))
	return out
}

// RunValuationWorkflow runs assumptions, computation and narration in order.
func (e *Engine) RunValuationWorkflow(ctx context.Context, p ProjectContext) ValuationReport {
	log := e.log.With(zap.String("project", p.ID), zap.String("asset_type", string(p.AssetType)))

	start := time.Now()
	assumptions := e.BuildAssumptions(ctx, p)
	e.metrics.ObserveStage("assumptions", time.Since(start))

	start = time.Now()
	result := e.RunValuation(assumptions, p)
	e.metrics.ObserveStage("compute", time.Since(start))

	start = time.Now()
	narrative := e.ExplainToInvestor(ctx, p, result, assumptions)
	e.metrics.ObserveStage("narrative", time.Since(start))

	log.Info("valuation complete",
		zap.String("model", string(result.ModelUsed)),
		zap.Float64("value_central", result.ValueCentral),
		zap.String("currency", result.Currency),
	)

	return ValuationReport{
		ID:          e.newID(),
		Project:     p,
		Assumptions: assumptions,
		Valuation:   result,
		Narrative:   narrative,
		GeneratedAt: e.now().UTC(),
	}
}

// Recalculate merges overrides into the report's assumptions and recomputes
// the valuation without calling the oracle. The narrative is carried over
// unchanged. r is not modified.
func (e *Engine) Recalculate(r ValuationReport, o AssumptionOverrides) ValuationReport {
	currency := r.Valuation.Currency
	if currency == "" {
		currency = e.currency
	}

	next := r
	next.Assumptions = o.Apply(r.Assumptions)
	next.Valuation = runValuation(next.Assumptions, r.Project, currency)
	next.Narrative = r.Narrative.clone()
	next.NarrativeStale = r.NarrativeStale || !o.IsEmpty()

	e.metrics.ObserveValuation(string(next.Valuation.ModelUsed))
	return next
}
