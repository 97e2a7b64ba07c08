package valuation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"tokenized_valuation/pkg/core/oracle"
	"tokenized_valuation/pkg/core/prompt"
	"tokenized_valuation/pkg/core/utils"
)

// RoleBanker is the oracle role that writes the investor narrative.
const RoleBanker = "Investment Banker"

// FallbackNarrative is returned when the oracle cannot answer.
func FallbackNarrative() InvestorNarrative {
	return InvestorNarrative{
		Headline:    "Valuation Analysis Complete",
		Story:       "The valuation reflects current market conditions and the asset's income generating potential.",
		KeyDrivers:  []string{"Stable Income", "Market Location"},
		RiskFactors: []string{"Interest Rate Risk", "Vacancy"},
	}
}

// ExplainToInvestor asks the oracle to describe a computed valuation. It
// never fails; on any oracle problem it returns FallbackNarrative.
func (e *Engine) ExplainToInvestor(ctx context.Context, p ProjectContext, v ValuationResultOutput, a ValuationAssumptions) InvestorNarrative {
	fallback := FallbackNarrative()

	req, err := e.narrativeRequest(p, v, a)
	if err != nil {
		e.log.Error("render narrative prompt", zap.String("project", p.ID), zap.Error(err))
		return fallback
	}

	n := oracle.Structured(ctx, e.guard, req, fallback)
	n = sanitizeNarrative(n)
	if n.Headline == "" || n.Story == "" {
		e.log.Warn("oracle narrative empty after cleanup, using fallback", zap.String("project", p.ID))
		return fallback
	}
	return n
}

func (e *Engine) narrativeRequest(p ProjectContext, v ValuationResultOutput, a ValuationAssumptions) (oracle.Request, error) {
	rate := a.DiscountRate
	if v.ModelUsed == ModelCapRate {
		rate = a.MarketCapRate
	}

	ctx := prompt.NewContext().
		Set("Name", p.Name).
		Set("AssetType", string(p.AssetType)).
		Set("Location", p.Location).
		Set("Currency", v.Currency).
		Set("ValueCentral", v.ValueCentral).
		Set("ValueLow", v.ValueLow).
		Set("ValueHigh", v.ValueHigh).
		Set("Method", MethodName(v.ModelUsed)).
		Set("NOI", a.EstimatedNOI).
		Set("Rate", rate).
		Set("Growth", a.GrowthRateIncome)

	rendered, err := e.prompts.Render(prompt.PromptIDs.ValuationNarrative, ctx)
	if err != nil {
		return oracle.Request{}, err
	}
	return oracle.Request{
		Role:   RoleBanker,
		System: rendered.System,
		Prompt: rendered.User,
		Schema: rendered.Schema,
	}, nil
}

// sanitizeNarrative reduces model output to plain text and drops empty items.
func sanitizeNarrative(n InvestorNarrative) InvestorNarrative {
	clean := func(items []string) []string {
		out := make([]string, 0, len(items))
		for _, s := range items {
			if s = utils.MarkdownToPlainText(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return InvestorNarrative{
		Headline:    strings.TrimSpace(utils.MarkdownToPlainText(n.Headline)),
		Story:       strings.TrimSpace(utils.MarkdownToPlainText(n.Story)),
		KeyDrivers:  clean(n.KeyDrivers),
		RiskFactors: clean(n.RiskFactors),
	}
}
