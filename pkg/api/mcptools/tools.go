package mcptools

import "github.com/mark3labs/mcp-go/mcp"

const projectHelp = "Project as a JSON object: {name, assetType (Real Estate|Business), location, status (Stabilized|Value-Add|Development), financials: {grossIncome, opex, noi, askPrice}, size: {amount, unit}}"

func createSelectModelTool() mcp.Tool {
	return mcp.NewTool("select_valuation_model",
		mcp.WithDescription("FAST: Pick the valuation model for a project. Stabilized assets use direct capitalization (cap_rate), everything else a light DCF (dcf_light)."),
		mcp.WithString("project", mcp.Required(), mcp.Description(projectHelp)),
	)
}

func createRunWorkflowTool() mcp.Tool {
	return mcp.NewTool("run_valuation_workflow",
		mcp.WithDescription("Run the full valuation workflow: estimate assumptions, compute the value band and write an investor narrative. Returns a complete valuation report. Never fails on model errors; conservative defaults are used instead."),
		mcp.WithString("project", mcp.Required(), mcp.Description(projectHelp)),
	)
}

func createComputeTool() mcp.Tool {
	return mcp.NewTool("compute_valuation",
		mcp.WithDescription("FAST: Compute a value band from explicit assumptions. Deterministic, no model calls."),
		mcp.WithString("project", mcp.Required(), mcp.Description(projectHelp)),
		mcp.WithString("assumptions", mcp.Required(), mcp.Description("Assumptions as a JSON object: {model, estimatedNOI, marketCapRate, discountRate, growthRateIncome, growthRateExpenses, exitYield, holdingPeriod, vacancyRate}. Rates are percentages.")),
	)
}

func createRecalculateTool() mcp.Tool {
	return mcp.NewTool("recalculate_valuation",
		mcp.WithDescription("FAST: Apply assumption overrides to an existing report and recompute the valuation. The narrative is kept and flagged stale."),
		mcp.WithString("report", mcp.Required(), mcp.Description("Report JSON as returned by run_valuation_workflow")),
		mcp.WithString("overrides", mcp.Required(), mcp.Description("Overrides as a JSON object with any of the assumption fields")),
	)
}

func createAnalyzeDeviationTool() mcp.Tool {
	return mcp.NewTool("analyze_deviation",
		mcp.WithDescription("FAST: Benchmark a deal's parameters against its asset class peer group. Returns per-metric z-scores, anomalies, a 0-100 deviation score and a risk label."),
		mcp.WithString("asset_type", mcp.Required(), mcp.Description("Asset class, e.g. 'Real Estate' or 'Business'. Unknown classes use the default peer group.")),
		mcp.WithNumber("token_price", mcp.Required(), mcp.Description("Token price in $")),
		mcp.WithNumber("insider_allocation", mcp.Required(), mcp.Description("Insider allocation in %")),
		mcp.WithNumber("yield", mcp.Required(), mcp.Description("Projected yield in %")),
		mcp.WithNumber("voting_power", mcp.Required(), mcp.Description("Voting rights granted to token holders in %")),
		mcp.WithNumber("hard_cap", mcp.Required(), mcp.Description("Raise hard cap in $")),
	)
}

func createListBenchmarksTool() mcp.Tool {
	return mcp.NewTool("list_benchmarks",
		mcp.WithDescription("List the peer-group benchmark table and the zero-spread scoring policy in use."),
	)
}
