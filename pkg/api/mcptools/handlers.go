package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"tokenized_valuation/pkg/core/deviation"
	"tokenized_valuation/pkg/core/utils"
	"tokenized_valuation/pkg/core/valuation"
)

// --- Helpers ---

const errNotFinite = "assumptions produce a non-finite valuation"

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

func jsonResult(v interface{}) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("encode result: " + err.Error())
	}
	return textResult(string(b))
}

// decodeArg reads a required JSON-object argument. Clients often send
// slightly malformed JSON, so the lenient parser is used.
func decodeArg(request mcp.CallToolRequest, key string, target interface{}) error {
	raw, err := request.RequireString(key)
	if err != nil {
		return err
	}
	if _, err := utils.SmartParse(raw, target); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// --- Valuation ---

func (t *Tools) handleSelectModel(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var project valuation.ProjectContext
	if err := decodeArg(request, "project", &project); err != nil {
		return errorResult(err.Error()), nil
	}
	model := valuation.SelectModel(project)
	return jsonResult(map[string]string{
		"model":  string(model),
		"method": valuation.MethodName(model),
	}), nil
}

func (t *Tools) handleRunWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var project valuation.ProjectContext
	if err := decodeArg(request, "project", &project); err != nil {
		return errorResult(err.Error()), nil
	}
	if project.Name == "" {
		return errorResult("project name is required"), nil
	}
	return jsonResult(t.Valuation.RunValuationWorkflow(ctx, project)), nil
}

func (t *Tools) handleCompute(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var project valuation.ProjectContext
	if err := decodeArg(request, "project", &project); err != nil {
		return errorResult(err.Error()), nil
	}
	var a valuation.ValuationAssumptions
	if err := decodeArg(request, "assumptions", &a); err != nil {
		return errorResult(err.Error()), nil
	}
	if a.Model == "" {
		a.Model = valuation.SelectModel(project)
	}
	if a.HoldingPeriod == 0 {
		a.HoldingPeriod = valuation.DefaultHoldingPeriod
	}
	if err := a.Validate(); err != nil {
		return errorResult(err.Error()), nil
	}
	out := t.Valuation.RunValuation(a, project)
	if !out.IsFinite() {
		return errorResult(errNotFinite), nil
	}
	return jsonResult(out), nil
}

func (t *Tools) handleRecalculate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var report valuation.ValuationReport
	if err := decodeArg(request, "report", &report); err != nil {
		return errorResult(err.Error()), nil
	}
	var overrides valuation.AssumptionOverrides
	if err := decodeArg(request, "overrides", &overrides); err != nil {
		return errorResult(err.Error()), nil
	}
	if err := overrides.Validate(); err != nil {
		return errorResult(err.Error()), nil
	}
	if err := overrides.Apply(report.Assumptions).Validate(); err != nil {
		return errorResult("report.assumptions: " + err.Error()), nil
	}
	next := t.Valuation.Recalculate(report, overrides)
	if !next.Valuation.IsFinite() {
		return errorResult(errNotFinite), nil
	}
	return jsonResult(next), nil
}

// --- Deviation ---

func (t *Tools) handleAnalyzeDeviation(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	assetType, err := request.RequireString("asset_type")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	var values deviation.ProjectValues
	for _, arg := range []struct {
		key string
		dst *float64
	}{
		{"token_price", &values.TokenPrice},
		{"insider_allocation", &values.InsiderAllocation},
		{"yield", &values.Yield},
		{"voting_power", &values.VotingPower},
		{"hard_cap", &values.HardCap},
	} {
		if *arg.dst, err = request.RequireFloat(arg.key); err != nil {
			return errorResult(err.Error()), nil
		}
	}
	return jsonResult(t.Deviation.AnalyzeDeviation(assetType, values)), nil
}

func (t *Tools) handleListBenchmarks(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{
		"zeroStdPolicy": t.Deviation.Policy(),
		"benchmarks":    t.Deviation.Benchmarks(),
	}), nil
}
