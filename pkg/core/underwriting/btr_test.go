package underwriting

import (
	"math"
	"testing"

	"dealfinder/pkg/core/assumption"
)

func TestBTRReferenceDeal(t *testing.T) {
	cfg := assumption.DefaultConfig()
	// 10 units at the reference total cost of 7,590,825.
	res := AnalyzeBTR(10, 7590825, cfg)

	// gross = 4,500 * 12 * 10 = 540,000
	if math.Abs(res.GrossAnnualRent-540000) > 0.01 {
		t.Errorf("gross rent expected 540,000, got %f", res.GrossAnnualRent)
	}
	// NOI = 540,000 * 0.70 = 378,000
	if math.Abs(res.NOI-378000) > 0.01 {
		t.Errorf("NOI expected 378,000, got %f", res.NOI)
	}
	// value = 378,000 / 0.05 = 7,560,000
	if math.Abs(res.StabilizedValue-7560000) > 0.01 {
		t.Errorf("stabilized value expected 7,560,000, got %f", res.StabilizedValue)
	}
	// loan = 7,560,000 * 0.65 = 4,914,000; ADS = 4,914,000 * 0.065 = 319,410
	if math.Abs(res.RefiLoan-4914000) > 0.01 {
		t.Errorf("refi loan expected 4,914,000, got %f", res.RefiLoan)
	}
	if math.Abs(res.AnnualDebtSvc-319410) > 0.01 {
		t.Errorf("debt service expected 319,410, got %f", res.AnnualDebtSvc)
	}
	// DSCR = 378,000 / 319,410 = 1.1834
	if math.Abs(res.DSCR-1.1834) > 0.001 {
		t.Errorf("DSCR expected 1.1834, got %f", res.DSCR)
	}
	// cash flow = 58,590; trapped equity = 7,590,825 - 4,914,000 = 2,676,825
	// cash-on-cash = 58,590 / 2,676,825 = 0.02189
	if math.Abs(res.AnnualCashFlow-58590) > 0.01 {
		t.Errorf("cash flow expected 58,590, got %f", res.AnnualCashFlow)
	}
	if math.Abs(res.CashOnCash-0.02189) > 0.0001 {
		t.Errorf("cash-on-cash expected 0.02189, got %f", res.CashOnCash)
	}
	// yield on cost = 378,000 / 7,590,825 = 0.04980
	if math.Abs(res.YieldOnCost-0.04980) > 0.0001 {
		t.Errorf("yield on cost expected 0.04980, got %f", res.YieldOnCost)
	}
}

func TestBTRZeroGuards(t *testing.T) {
	cfg := assumption.DefaultConfig()

	if res := AnalyzeBTR(0, 5000000, cfg); res.GrossAnnualRent != 0 || res.DSCR != 0 {
		t.Errorf("zero units expected zero metrics, got %+v", res)
	}

	// A zero cap rate cannot produce a value, a loan, or any ratio.
	cfg.BTRCapRate = 0
	res := AnalyzeBTR(10, 5000000, cfg)
	if res.StabilizedValue != 0 || res.RefiLoan != 0 || res.DSCR != 0 || res.CashOnCash != 0 {
		t.Errorf("zero cap rate leaked a division: %+v", res)
	}
	if math.IsNaN(res.DSCR) || math.IsInf(res.CashOnCash, 0) {
		t.Error("zero cap rate produced NaN/Inf")
	}

	// Zero total cost guards yield-on-cost and cash-on-cash.
	cfg = assumption.DefaultConfig()
	res = AnalyzeBTR(10, 0, cfg)
	if res.YieldOnCost != 0 {
		t.Errorf("zero cost expected zero yield, got %f", res.YieldOnCost)
	}
}

func TestEngineBTRMemoization(t *testing.T) {
	ctx := assumption.NewContext(nil)
	eng := NewEngine(ctx)
	l := referenceListing()

	first := eng.AnalyzeBTR(l, 850)
	second := eng.AnalyzeBTR(l, 850)
	if first != second {
		t.Error("expected the memoized BTR pointer on repeat analysis")
	}
	ctx.Replace(assumption.DefaultConfig())
	if third := eng.AnalyzeBTR(l, 850); third == first {
		t.Error("BTR memo not cleared on assumption replace")
	}
}
