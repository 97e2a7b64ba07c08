package valuation

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"tokenized_valuation/pkg/core/oracle"
	"tokenized_valuation/pkg/core/prompt"
)

// RoleAppraiser is the oracle role that estimates assumptions.
const RoleAppraiser = "Senior Appraiser"

// assumptionEstimate is the oracle's answer.
type assumptionEstimate struct {
	EstimatedNOI       float64 `json:"estimatedNOI"`
	MarketCapRate      float64 `json:"marketCapRate"`
	DiscountRate       float64 `json:"discountRate"`
	GrowthRateIncome   float64 `json:"growthRateIncome"`
	GrowthRateExpenses float64 `json:"growthRateExpenses"`
	ExitYield          float64 `json:"exitYield"`
	VacancyRate        float64 `json:"vacancyRate"`
}

// userNOI returns the NOI the user supplied. Zero counts as not supplied.
func userNOI(p ProjectContext) (float64, bool) {
	if p.Financials.NOI != nil && *p.Financials.NOI != 0 {
		return *p.Financials.NOI, true
	}
	return 0, false
}

// fallbackNOI prefers the user's NOI, then gross income less opex, then 0.
func fallbackNOI(p ProjectContext) float64 {
	if noi, ok := userNOI(p); ok {
		return noi
	}
	f := p.Financials
	if f.GrossIncome != nil && f.Opex != nil {
		return *f.GrossIncome - *f.Opex
	}
	return 0
}

func fallbackEstimate(p ProjectContext) assumptionEstimate {
	return assumptionEstimate{
		EstimatedNOI:       fallbackNOI(p),
		MarketCapRate:      6,
		DiscountRate:       10,
		GrowthRateIncome:   2,
		GrowthRateExpenses: 3,
		ExitYield:          7,
		VacancyRate:        5,
	}
}

// FallbackAssumptions is the deterministic assumption set used when the
// oracle cannot answer.
func FallbackAssumptions(p ProjectContext) ValuationAssumptions {
	return assemble(p, SelectModel(p), fallbackEstimate(p))
}

func assemble(p ProjectContext, model ModelKind, est assumptionEstimate) ValuationAssumptions {
	a := ValuationAssumptions{
		Model:              model,
		EstimatedNOI:       est.EstimatedNOI,
		GrowthRateIncome:   est.GrowthRateIncome,
		GrowthRateExpenses: est.GrowthRateExpenses,
		MarketCapRate:      est.MarketCapRate,
		DiscountRate:       est.DiscountRate,
		ExitYield:          est.ExitYield,
		HoldingPeriod:      DefaultHoldingPeriod,
		VacancyRate:        est.VacancyRate,
		Sources: map[string]Source{
			FieldEstimatedNOI:       SourceAI,
			FieldMarketCapRate:      SourceAI,
			FieldDiscountRate:       SourceAI,
			FieldGrowthRateIncome:   SourceAI,
			FieldGrowthRateExpenses: SourceAI,
			FieldExitYield:          SourceAI,
			FieldVacancyRate:        SourceAI,
		},
	}
	// user data always wins for NOI
	if noi, ok := userNOI(p); ok {
		a.EstimatedNOI = noi
		a.Sources[FieldEstimatedNOI] = SourceUser
	}
	return a
}

// BuildAssumptions asks the oracle for assumption values and falls back to
// FallbackAssumptions on any failure. It never fails.
func (e *Engine) BuildAssumptions(ctx context.Context, p ProjectContext) ValuationAssumptions {
	model := SelectModel(p)
	fallback := fallbackEstimate(p)

	req, err := e.assumptionRequest(p, model)
	if err != nil {
		e.log.Error("render assumption prompt", zap.String("project", p.ID), zap.Error(err))
		return assemble(p, model, fallback)
	}

	est := oracle.Structured(ctx, e.guard, req, fallback)
	return assemble(p, model, est)
}

func (e *Engine) assumptionRequest(p ProjectContext, model ModelKind) (oracle.Request, error) {
	financials, err := json.Marshal(p.Financials)
	if err != nil {
		return oracle.Request{}, fmt.Errorf("marshal financials: %w", err)
	}
	size := "n/a"
	if p.Size != nil {
		size = fmt.Sprintf("%g %s", p.Size.Amount, p.Size.Unit)
	}

	ctx := prompt.NewContext().
		Set("Model", string(model)).
		Set("Name", p.Name).
		Set("AssetType", string(p.AssetType)).
		Set("Location", p.Location).
		Set("Status", string(p.Status)).
		Set("Size", size).
		Set("Financials", string(financials))

	rendered, err := e.prompts.Render(prompt.PromptIDs.ValuationAssumptions, ctx)
	if err != nil {
		return oracle.Request{}, err
	}
	return oracle.Request{
		Role:   RoleAppraiser,
		System: rendered.System,
		Prompt: rendered.User,
		Schema: rendered.Schema,
	}, nil
}
