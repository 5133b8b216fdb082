package underwriting

import (
	"dealfinder/pkg/core/assumption"
)

// MonthRow is one line of the monthly cash-flow schedule. Sources equal
// uses every month; the loan draw is the balancing plug once committed
// equity is exhausted.
type MonthRow struct {
	Month int    `json:"month"`
	Phase string `json:"phase"` // predev | construction | sale

	// Uses.
	LandCost        float64 `json:"landCost,omitempty"`
	AcquisitionFee  float64 `json:"acquisitionFee,omitempty"`
	OriginationFee  float64 `json:"originationFee,omitempty"`
	DemoCost        float64 `json:"demoCost,omitempty"`
	SubdivisionCost float64 `json:"subdivisionCost,omitempty"`
	AECost          float64 `json:"aeCost,omitempty"`
	HardSoftCost    float64 `json:"hardSoftCost,omitempty"`
	PropertyTax     float64 `json:"propertyTax,omitempty"`
	Insurance       float64 `json:"insurance,omitempty"`
	AssetMgmtFee    float64 `json:"assetMgmtFee,omitempty"`
	DevMgmtFee      float64 `json:"devMgmtFee,omitempty"`
	Interest        float64 `json:"interest,omitempty"`
	TotalUses       float64 `json:"totalUses"`

	// Sources.
	EquityDraw   float64 `json:"equityDraw,omitempty"`
	LoanDraw     float64 `json:"loanDraw,omitempty"`
	TotalSources float64 `json:"totalSources"`

	// Loan state.
	OpeningBalance     float64 `json:"openingBalance"`
	ClosingBalance     float64 `json:"closingBalance"`
	CumulativeInterest float64 `json:"cumulativeInterest"`

	// Exit events, final month only.
	GrossProceeds    float64 `json:"grossProceeds,omitempty"`
	TransactionCosts float64 `json:"transactionCosts,omitempty"`
	DispositionFee   float64 `json:"dispositionFee,omitempty"`
	LoanRepayment    float64 `json:"loanRepayment,omitempty"`
}

// WaterfallResult holds the monthly schedule plus the exit distribution by
// tranche. Every dollar of NetDistributable lands in exactly one tranche.
type WaterfallResult struct {
	Schedule []MonthRow `json:"schedule"`

	TotalEquityDrawn float64 `json:"totalEquityDrawn"`
	TotalLoanDrawn   float64 `json:"totalLoanDrawn"`
	TotalInterest    float64 `json:"totalInterest"`
	PeakLoanBalance  float64 `json:"peakLoanBalance"`

	NetDistributable   float64 `json:"netDistributable"`
	LPROC              float64 `json:"lpRoc"`
	GPROC              float64 `json:"gpRoc"`
	LPPref             float64 `json:"lpPref"`
	RemainingAfterPref float64 `json:"remainingAfterPref"`
	GPPromote          float64 `json:"gpPromote"`
	LPResidual         float64 `json:"lpResidual"`
	LPTotal            float64 `json:"lpTotal"`
	GPTotal            float64 `json:"gpTotal"`
}

// RunWaterfall builds the monthly schedule for a deal and distributes the
// exit proceeds through the LP/GP waterfall.
func RunWaterfall(pf *ProFormaResult, stack CapitalStackResult, cfg *assumption.Config) *WaterfallResult {
	hold := pf.HoldMonths
	if hold <= 0 {
		return &WaterfallResult{Schedule: []MonthRow{}}
	}

	// Phase boundaries. Any relocation extension lands in predevelopment.
	predev := hold - cfg.ConstructionMonths - cfg.SaleMonths
	if predev < 1 {
		predev = 1
	}
	constructionEnd := predev + cfg.ConstructionMonths
	if constructionEnd > hold {
		constructionEnd = hold
	}
	// Fixed predevelopment events, clamped into the predev window.
	clamp := func(m int) int {
		if m > predev-1 {
			return predev - 1
		}
		return m
	}
	demoMonth, subdivMonth, aeMonth := clamp(1), clamp(2), clamp(3)

	monthlyTax := pf.PropertyTax / float64(hold)
	monthlyIns := pf.Insurance / float64(hold)
	monthlyRate := cfg.InterestRate / 12

	constructionMonths := constructionEnd - predev
	var monthlyHardSoft float64
	if constructionMonths > 0 {
		monthlyHardSoft = (pf.HardCost + pf.SoftCost) / float64(constructionMonths)
	}

	res := &WaterfallResult{Schedule: make([]MonthRow, 0, hold)}
	equityRemaining := stack.Equity
	balance := 0.0
	cumInterest := 0.0

	for m := 0; m < hold; m++ {
		row := MonthRow{Month: m, OpeningBalance: balance}
		switch {
		case m < predev:
			row.Phase = "predev"
		case m < constructionEnd:
			row.Phase = "construction"
		default:
			row.Phase = "sale"
		}

		// 1. Uses.
		if m == 0 {
			row.LandCost = pf.AcquisitionPrice
			row.AcquisitionFee = stack.AcquisitionFee
			row.OriginationFee = stack.OriginationFee
		}
		if m == demoMonth {
			row.DemoCost = pf.DemoCost
		}
		if m == subdivMonth {
			row.SubdivisionCost = pf.SubdivisionCost
		}
		if m == aeMonth {
			row.AECost = pf.AECost
		}
		if row.Phase == "construction" {
			row.HardSoftCost = monthlyHardSoft
			row.DevMgmtFee = cfg.DevMgmtMonthly
		}
		row.PropertyTax = monthlyTax
		row.Insurance = monthlyIns
		row.AssetMgmtFee = cfg.AssetMgmtMonthly

		// 2. Interest cash-pays on the opening balance, not capitalized.
		row.Interest = balance * monthlyRate
		cumInterest += row.Interest

		row.TotalUses = row.LandCost + row.AcquisitionFee + row.OriginationFee +
			row.DemoCost + row.SubdivisionCost + row.AECost + row.HardSoftCost +
			row.PropertyTax + row.Insurance + row.AssetMgmtFee + row.DevMgmtFee +
			row.Interest

		// 3. Sources: committed equity first, loan draw as the plug.
		row.EquityDraw = row.TotalUses
		if row.EquityDraw > equityRemaining {
			row.EquityDraw = equityRemaining
		}
		equityRemaining -= row.EquityDraw
		row.LoanDraw = row.TotalUses - row.EquityDraw
		row.TotalSources = row.EquityDraw + row.LoanDraw

		balance += row.LoanDraw
		row.ClosingBalance = balance
		row.CumulativeInterest = cumInterest
		if balance > res.PeakLoanBalance {
			res.PeakLoanBalance = balance
		}
		res.TotalEquityDrawn += row.EquityDraw
		res.TotalLoanDrawn += row.LoanDraw

		// 4. Exit events on the final month: sale, fees, full repayment.
		if m == hold-1 {
			row.GrossProceeds = pf.GrossRevenue
			row.TransactionCosts = pf.GrossRevenue - pf.NetRevenue
			row.DispositionFee = pf.GrossRevenue * cfg.DispositionFeePct
			row.LoanRepayment = balance
			balance = 0
			row.ClosingBalance = 0
			res.NetDistributable = pf.NetRevenue - row.DispositionFee - row.LoanRepayment
		}
		res.Schedule = append(res.Schedule, row)
	}
	res.TotalInterest = cumInterest

	distributeExit(res, stack, float64(hold), cfg)
	return res
}

// distributeExit runs the exit waterfall: pro-rata return of capital, simple
// LP pref, then the promote split. Each tranche floors at zero in loss
// scenarios, and the residual split is computed by subtraction so no dollar
// leaks.
func distributeExit(res *WaterfallResult, stack CapitalStackResult, holdMonths float64, cfg *assumption.Config) {
	net := res.NetDistributable
	if net <= 0 {
		return
	}

	// 1. Return of capital, pro-rata across the co-investment split.
	roc := net
	if roc > stack.Equity {
		roc = stack.Equity
	}
	if stack.Equity > 0 {
		res.LPROC = roc * stack.LPEquity / stack.Equity
		res.GPROC = roc - res.LPROC
	}

	afterROC := net - roc
	if afterROC <= 0 {
		res.LPTotal = res.LPROC
		res.GPTotal = res.GPROC
		return
	}

	// 2. Simple non-compounding preferred return on LP capital.
	res.LPPref = stack.LPEquity * cfg.LPPrefRate * holdMonths / 12
	if res.LPPref > afterROC {
		res.LPPref = afterROC
	}

	// 3. Promote split of the remainder.
	res.RemainingAfterPref = afterROC - res.LPPref
	res.GPPromote = res.RemainingAfterPref * cfg.GPPromotePct
	res.LPResidual = res.RemainingAfterPref - res.GPPromote

	res.LPTotal = res.LPROC + res.LPPref + res.LPResidual
	res.GPTotal = res.GPROC + res.GPPromote
}
