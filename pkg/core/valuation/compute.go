package valuation

import (
	"math"

	"github.com/shopspring/decimal"
)

// RunValuation computes a valuation in DefaultCurrency. It is pure.
func RunValuation(a ValuationAssumptions, p ProjectContext) ValuationResultOutput {
	return runValuation(a, p, DefaultCurrency)
}

func runValuation(a ValuationAssumptions, p ProjectContext, currency string) ValuationResultOutput {
	metrics := ValuationMetrics{
		NOIEffective:   a.EstimatedNOI,
		CapRateApplied: a.MarketCapRate,
	}

	var central float64
	if a.Model == ModelCapRate {
		capRate := math.Max(a.MarketCapRate, rateFloor)
		central = a.EstimatedNOI / (capRate / 100)
		metrics.CapRateApplied = capRate

		// undefined for a zero value
		if central != 0 {
			grossYield := a.EstimatedNOI / central * 100
			metrics.GrossYield = &grossYield
		}
	} else {
		central = discountedCashFlow(a)
		irr := a.DiscountRate
		metrics.IRR = &irr
	}

	if p.Size != nil && p.Size.Amount > 0 {
		perUnit := central / p.Size.Amount
		metrics.PricePerUnit = &perUnit
	}

	return ValuationResultOutput{
		ModelUsed:    a.Model,
		ValueCentral: roundCurrency(central),
		ValueLow:     roundCurrency(central * bandLow),
		ValueHigh:    roundCurrency(central * bandHigh),
		Metrics:      metrics,
		Currency:     currency,
	}
}

// discountedCashFlow grows NOI each year of the holding period, discounts it
// back, then adds the discounted exit value capitalized from year N+1 NOI.
func discountedCashFlow(a ValuationAssumptions) float64 {
	growth := 1 + a.GrowthRateIncome/100
	discount := 1 + a.DiscountRate/100

	noi := a.EstimatedNOI
	var cumulativePV float64
	for t := 1; t <= a.HoldingPeriod; t++ {
		noi *= growth
		cumulativePV += noi / math.Pow(discount, float64(t))
	}

	exitYield := math.Max(a.ExitYield, rateFloor)
	terminalValue := noi * growth / (exitYield / 100)
	terminalPV := terminalValue / math.Pow(discount, float64(a.HoldingPeriod))

	return cumulativePV + terminalPV
}

var half = decimal.NewFromFloat(0.5)

// roundCurrency rounds to a whole unit with halves going up (-2.5 -> -2).
func roundCurrency(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Add(half).Floor().InexactFloat64()
}
