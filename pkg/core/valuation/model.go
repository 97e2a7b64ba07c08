package valuation

const (
	// DefaultHoldingPeriod is the fixed DCF horizon in years.
	DefaultHoldingPeriod = 5
	// MaxHoldingPeriod bounds caller-supplied horizons.
	MaxHoldingPeriod = 100

	// rateFloor (percent) keeps cap rates and exit yields away from zero.
	rateFloor = 0.1

	bandLow  = 0.9
	bandHigh = 1.1

	DefaultCurrency = "USD"
)

// SelectModel picks direct capitalization for stabilized real estate and a
// light DCF for everything else.
func SelectModel(p ProjectContext) ModelKind {
	if p.AssetType == AssetRealEstate && p.Status == StatusStabilized {
		return ModelCapRate
	}
	return ModelDCFLight
}

// MethodName is the human-readable name of a model.
func MethodName(m ModelKind) string {
	if m == ModelCapRate {
		return "Direct Capitalization (Income)"
	}
	return "Discounted Cash Flow (Growth)"
}
