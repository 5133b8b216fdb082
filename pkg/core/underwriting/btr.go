package underwriting

import (
	"dealfinder/pkg/core/assumption"
)

// BTRResult is the hold-as-rental (build-to-rent) alternative for a deal,
// computed from the same unit count and total cost as the sale pro forma.
type BTRResult struct {
	Units           int     `json:"units"`
	GrossAnnualRent float64 `json:"grossAnnualRent"`
	NOI             float64 `json:"noi"`
	StabilizedValue float64 `json:"stabilizedValue"`
	RefiLoan        float64 `json:"refiLoan"`
	AnnualDebtSvc   float64 `json:"annualDebtSvc"`
	DSCR            float64 `json:"dscr"`
	AnnualCashFlow  float64 `json:"annualCashFlow"`
	CashOnCash      float64 `json:"cashOnCash"`
	YieldOnCost     float64 `json:"yieldOnCost"`
}

// AnalyzeBTR computes the rental-hold economics. Every ratio returns 0 when
// its denominator is not positive.
func AnalyzeBTR(units int, totalCost float64, cfg *assumption.Config) *BTRResult {
	res := &BTRResult{Units: units}
	if units <= 0 {
		return res
	}

	res.GrossAnnualRent = cfg.BTRRentMonthly * 12 * float64(units)
	res.NOI = res.GrossAnnualRent * (1 - cfg.BTROpexRatio)
	if cfg.BTRCapRate > 0 {
		res.StabilizedValue = res.NOI / cfg.BTRCapRate
	}
	res.RefiLoan = res.StabilizedValue * cfg.BTRRefiLTV
	res.AnnualDebtSvc = res.RefiLoan * cfg.BTRPermRate
	if res.AnnualDebtSvc > 0 {
		res.DSCR = res.NOI / res.AnnualDebtSvc
	}
	res.AnnualCashFlow = res.NOI - res.AnnualDebtSvc

	if trapped := totalCost - res.RefiLoan; trapped > 0 {
		res.CashOnCash = res.AnnualCashFlow / trapped
	}
	if totalCost > 0 {
		res.YieldOnCost = res.NOI / totalCost
	}
	return res
}
