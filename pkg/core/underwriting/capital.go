package underwriting

import (
	"math"

	"dealfinder/pkg/core/assumption"
)

// CapitalStackResult sizes the equity and debt tranches of a deal. Equity is
// rounded up to a $10,000 tranche; Debt absorbs the rounding so
// Equity + Debt always equals the rounded total project cost.
type CapitalStackResult struct {
	TotalProjectCost float64 `json:"totalProjectCost"`
	Equity           float64 `json:"equity"`
	Debt             float64 `json:"debt"`
	LPEquity         float64 `json:"lpEquity"`
	GPEquity         float64 `json:"gpEquity"`
	OriginationFee   float64 `json:"originationFee"`
	AcquisitionFee   float64 `json:"acquisitionFee"`
}

const equityTranche = 10000

// SizeCapitalStack resolves the equity/debt split. The origination fee is a
// percentage of debt, debt is the residual after equity, and equity is a
// percentage of the total cost including the fee, so the total is solved in
// closed form rather than iterated:
//
//	totalCost = baseCosts / (1 - (1-equityPct)*origFeePct)
func SizeCapitalStack(pf *ProFormaResult, cfg *assumption.Config) CapitalStackResult {
	acquisitionFee := pf.AcquisitionPrice * cfg.AcqFeePct

	// The pro forma's carry already includes its own flat origination
	// estimate; strip it so the closed-form fee is not double counted.
	baseCosts := pf.AcquisitionPrice + pf.TotalBuildCost +
		(pf.TotalCarry - pf.OriginationFee) + acquisitionFee

	denom := 1 - (1-cfg.EquityPct)*cfg.OrigFeePct
	if baseCosts <= 0 || denom <= 0 {
		return CapitalStackResult{AcquisitionFee: acquisitionFee}
	}
	totalCost := baseCosts / denom

	equity := math.Ceil(totalCost*cfg.EquityPct/equityTranche) * equityTranche
	debt := math.Round(totalCost) - equity
	if debt < 0 {
		debt = 0
	}

	return CapitalStackResult{
		TotalProjectCost: totalCost,
		Equity:           equity,
		Debt:             debt,
		LPEquity:         equity * (1 - cfg.GPCoinvestPct),
		GPEquity:         equity * cfg.GPCoinvestPct,
		OriginationFee:   totalCost - baseCosts,
		AcquisitionFee:   acquisitionFee,
	}
}
