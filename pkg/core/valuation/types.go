package valuation

import (
	"errors"
	"fmt"
	"math"
	"time"
)

type AssetType string

const (
	AssetRealEstate     AssetType = "Real Estate"
	AssetBusiness       AssetType = "Business"
	AssetInfrastructure AssetType = "Infrastructure"
	AssetEnergy         AssetType = "Energy"
	AssetArt            AssetType = "Art & Collectibles"
)

type AssetStatus string

const (
	StatusStabilized  AssetStatus = "Stabilized"
	StatusValueAdd    AssetStatus = "Value-Add"
	StatusDevelopment AssetStatus = "Development"
)

// ModelKind selects the valuation formula.
type ModelKind string

const (
	ModelCapRate  ModelKind = "cap_rate"
	ModelDCFLight ModelKind = "dcf_light"
)

type SizeUnit string

const (
	UnitSqm   SizeUnit = "sqm"
	UnitUnits SizeUnit = "units"
)

// Source records where an assumption value came from.
type Source string

const (
	SourceUser Source = "User Provided"
	SourceAI   Source = "AI Estimated"
)

// Assumption field names, used as provenance keys.
const (
	FieldEstimatedNOI       = "estimatedNOI"
	FieldMarketCapRate      = "marketCapRate"
	FieldDiscountRate       = "discountRate"
	FieldGrowthRateIncome   = "growthRateIncome"
	FieldGrowthRateExpenses = "growthRateExpenses"
	FieldExitYield          = "exitYield"
	FieldVacancyRate        = "vacancyRate"
	FieldHoldingPeriod      = "holdingPeriod"
	FieldModel              = "model"
)

// Financials are annual figures; nil means "not supplied".
type Financials struct {
	GrossIncome *float64 `json:"grossIncome,omitempty"`
	Opex        *float64 `json:"opex,omitempty"`
	NOI         *float64 `json:"noi,omitempty"`
	AskPrice    *float64 `json:"askPrice,omitempty"`
}

type Size struct {
	Amount float64  `json:"amount"`
	Unit   SizeUnit `json:"unit"`
}

// ProjectContext describes the asset being valued.
type ProjectContext struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	AssetType  AssetType   `json:"assetType"`
	Location   string      `json:"location"`
	Status     AssetStatus `json:"status"`
	Financials Financials  `json:"financials"`
	Size       *Size       `json:"size,omitempty"`
}

// ValuationAssumptions drive the numeric model. For cap_rate only
// EstimatedNOI and MarketCapRate affect the value; dcf_light uses
// EstimatedNOI, GrowthRateIncome, DiscountRate, ExitYield and HoldingPeriod.
type ValuationAssumptions struct {
	Model              ModelKind         `json:"model"`
	EstimatedNOI       float64           `json:"estimatedNOI"`
	GrowthRateIncome   float64           `json:"growthRateIncome"`   // %
	GrowthRateExpenses float64           `json:"growthRateExpenses"` // %
	MarketCapRate      float64           `json:"marketCapRate"`      // %
	DiscountRate       float64           `json:"discountRate"`       // %
	ExitYield          float64           `json:"exitYield"`          // %
	HoldingPeriod      int               `json:"holdingPeriod"`      // years
	VacancyRate        float64           `json:"vacancyRate"`        // %
	Sources            map[string]Source `json:"sources"`
}

// Clone returns a copy that shares no maps with a.
func (a ValuationAssumptions) Clone() ValuationAssumptions {
	out := a
	out.Sources = make(map[string]Source, len(a.Sources))
	for k, v := range a.Sources {
		out.Sources[k] = v
	}
	return out
}

// ErrInvalidOverride is returned by AssumptionOverrides.Validate.
var ErrInvalidOverride = errors.New("invalid assumption override")

// AssumptionOverrides is a partial ValuationAssumptions: nil fields keep the
// previous value.
type AssumptionOverrides struct {
	Model              *ModelKind `json:"model,omitempty"`
	EstimatedNOI       *float64   `json:"estimatedNOI,omitempty"`
	GrowthRateIncome   *float64   `json:"growthRateIncome,omitempty"`
	GrowthRateExpenses *float64   `json:"growthRateExpenses,omitempty"`
	MarketCapRate      *float64   `json:"marketCapRate,omitempty"`
	DiscountRate       *float64   `json:"discountRate,omitempty"`
	ExitYield          *float64   `json:"exitYield,omitempty"`
	HoldingPeriod      *int       `json:"holdingPeriod,omitempty"`
	VacancyRate        *float64   `json:"vacancyRate,omitempty"`
}

// IsEmpty reports whether no field is set.
func (o AssumptionOverrides) IsEmpty() bool {
	return o == AssumptionOverrides{}
}

// Validate rejects overrides the formulas cannot evaluate.
func (o AssumptionOverrides) Validate() error {
	if o.Model != nil && *o.Model != ModelCapRate && *o.Model != ModelDCFLight {
		return fmt.Errorf("%w: model %q", ErrInvalidOverride, *o.Model)
	}
	if o.HoldingPeriod != nil && (*o.HoldingPeriod < 1 || *o.HoldingPeriod > MaxHoldingPeriod) {
		return fmt.Errorf("%w: holdingPeriod must be between 1 and %d", ErrInvalidOverride, MaxHoldingPeriod)
	}
	if o.DiscountRate != nil && *o.DiscountRate <= -100 {
		return fmt.Errorf("%w: discountRate must be above -100", ErrInvalidOverride)
	}
	for name, v := range map[string]*float64{
		FieldEstimatedNOI:       o.EstimatedNOI,
		FieldGrowthRateIncome:   o.GrowthRateIncome,
		FieldGrowthRateExpenses: o.GrowthRateExpenses,
		FieldMarketCapRate:      o.MarketCapRate,
		FieldDiscountRate:       o.DiscountRate,
		FieldExitYield:          o.ExitYield,
		FieldVacancyRate:        o.VacancyRate,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidOverride, name)
		}
	}
	return nil
}

// Validate checks a complete assumption set with the same rules as
// AssumptionOverrides.Validate. The model is required.
func (a ValuationAssumptions) Validate() error {
	if a.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidOverride)
	}
	return AssumptionOverrides{
		Model:              &a.Model,
		EstimatedNOI:       &a.EstimatedNOI,
		GrowthRateIncome:   &a.GrowthRateIncome,
		GrowthRateExpenses: &a.GrowthRateExpenses,
		MarketCapRate:      &a.MarketCapRate,
		DiscountRate:       &a.DiscountRate,
		ExitYield:          &a.ExitYield,
		HoldingPeriod:      &a.HoldingPeriod,
		VacancyRate:        &a.VacancyRate,
	}.Validate()
}

// Apply merges o over base and marks every overridden field as user
// provided. base is not modified.
func (o AssumptionOverrides) Apply(base ValuationAssumptions) ValuationAssumptions {
	out := base.Clone()
	setF := func(field string, dst *float64, v *float64) {
		if v != nil {
			*dst = *v
			out.Sources[field] = SourceUser
		}
	}
	if o.Model != nil {
		out.Model = *o.Model
	}
	setF(FieldEstimatedNOI, &out.EstimatedNOI, o.EstimatedNOI)
	setF(FieldGrowthRateIncome, &out.GrowthRateIncome, o.GrowthRateIncome)
	setF(FieldGrowthRateExpenses, &out.GrowthRateExpenses, o.GrowthRateExpenses)
	setF(FieldMarketCapRate, &out.MarketCapRate, o.MarketCapRate)
	setF(FieldDiscountRate, &out.DiscountRate, o.DiscountRate)
	setF(FieldExitYield, &out.ExitYield, o.ExitYield)
	setF(FieldVacancyRate, &out.VacancyRate, o.VacancyRate)
	if o.HoldingPeriod != nil && *o.HoldingPeriod >= 1 {
		out.HoldingPeriod = *o.HoldingPeriod
		out.Sources[FieldHoldingPeriod] = SourceUser
	}
	return out
}

type ValuationMetrics struct {
	NOIEffective   float64  `json:"noiEffective"`
	CapRateApplied float64  `json:"capRateApplied"`
	GrossYield     *float64 `json:"grossYield,omitempty"`
	PricePerUnit   *float64 `json:"pricePerUnit,omitempty"`
	IRR            *float64 `json:"irr,omitempty"` // dcf_light only; equals the discount rate
}

// ValuationResultOutput is the output of RunValuation. Values are rounded to
// whole currency units.
type ValuationResultOutput struct {
	ModelUsed    ModelKind        `json:"modelUsed"`
	ValueCentral float64          `json:"valueCentral"`
	ValueLow     float64          `json:"valueLow"`
	ValueHigh    float64          `json:"valueHigh"`
	Metrics      ValuationMetrics `json:"metrics"`
	Currency     string           `json:"currency"`
}

// IsFinite reports whether the value band can be represented in JSON.
func (v ValuationResultOutput) IsFinite() bool {
	for _, x := range []float64{v.ValueCentral, v.ValueLow, v.ValueHigh} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

type InvestorNarrative struct {
	Headline    string   `json:"headline"`
	Story       string   `json:"story"`
	KeyDrivers  []string `json:"keyDrivers"`
	RiskFactors []string `json:"riskFactors"`
}

func (n InvestorNarrative) clone() InvestorNarrative {
	n.KeyDrivers = append([]string(nil), n.KeyDrivers...)
	n.RiskFactors = append([]string(nil), n.RiskFactors...)
	return n
}

// ValuationReport aggregates one workflow run. After Recalculate the
// narrative is carried over unchanged and may not describe Valuation;
// NarrativeStale records that.
type ValuationReport struct {
	ID             string                `json:"id"`
	Project        ProjectContext        `json:"project"`
	Assumptions    ValuationAssumptions  `json:"assumptions"`
	Valuation      ValuationResultOutput `json:"valuation"`
	Narrative      InvestorNarrative     `json:"narrative"`
	GeneratedAt    time.Time             `json:"generatedAt"`
	NarrativeStale bool                  `json:"narrativeStale"`
}
