package underwriting

import (
	"math"
	"testing"

	"dealfinder/pkg/core/assumption"
)

func referenceStack(t *testing.T) (CapitalStackResult, *ProFormaResult, *assumption.Config) {
	t.Helper()
	cfg := assumption.DefaultConfig()
	pf := CalculateProForma(referenceListing(), 850, cfg)
	return SizeCapitalStack(pf, cfg), pf, cfg
}

func TestEquityTrancheRounding(t *testing.T) {
	stack, _, _ := referenceStack(t)
	if math.Mod(stack.Equity, 10000) != 0 {
		t.Errorf("equity expected a multiple of 10,000, got %f", stack.Equity)
	}
	if stack.Equity+stack.Debt != math.Round(stack.TotalProjectCost) {
		t.Errorf("equity %f + debt %f != round(total) %f",
			stack.Equity, stack.Debt, math.Round(stack.TotalProjectCost))
	}
}

func TestClosedFormOriginationFee(t *testing.T) {
	stack, pf, cfg := referenceStack(t)

	// baseCosts = acq + build + carry(ex engine orig fee) + acq fee
	//           = 768,000 + 6,075,000 + 687,075 + 7,680 = 7,537,755
	// totalCost = 7,537,755 / (1 - 0.65*0.01) = 7,587,070.96
	if math.Abs(stack.TotalProjectCost-7587070.96) > 1 {
		t.Errorf("total project cost expected ~7,587,070, got %f", stack.TotalProjectCost)
	}
	// 0.35 * 7,587,070 = 2,655,475 -> ceil to 2,660,000.
	if stack.Equity != 2660000 {
		t.Errorf("equity expected 2,660,000, got %f", stack.Equity)
	}

	// The fee must equal origFeePct of the unrounded debt share.
	unroundedDebt := stack.TotalProjectCost * (1 - cfg.EquityPct)
	if math.Abs(stack.OriginationFee-unroundedDebt*cfg.OrigFeePct) > 1 {
		t.Errorf("origination fee %f inconsistent with debt %f at %.2f%%",
			stack.OriginationFee, unroundedDebt, cfg.OrigFeePct*100)
	}

	if math.Abs(stack.AcquisitionFee-pf.AcquisitionPrice*cfg.AcqFeePct) > 0.01 {
		t.Errorf("acquisition fee expected %f, got %f",
			pf.AcquisitionPrice*cfg.AcqFeePct, stack.AcquisitionFee)
	}
}

func TestCoinvestSplit(t *testing.T) {
	stack, _, cfg := referenceStack(t)
	if math.Abs(stack.LPEquity+stack.GPEquity-stack.Equity) > 0.01 {
		t.Errorf("LP %f + GP %f != equity %f", stack.LPEquity, stack.GPEquity, stack.Equity)
	}
	if math.Abs(stack.GPEquity-stack.Equity*cfg.GPCoinvestPct) > 0.01 {
		t.Errorf("GP co-invest expected %.0f%% of equity", cfg.GPCoinvestPct*100)
	}
}

func TestCapitalStackInvariantAcrossInputs(t *testing.T) {
	cfg := assumption.DefaultConfig()
	for _, exit := range []float64{400, 650, 850, 1200} {
		for _, price := range []float64{300000, 768000, 2500000} {
			l := referenceListing()
			l.Price = price
			pf := CalculateProForma(l, exit, cfg)
			stack := SizeCapitalStack(pf, cfg)
			if math.Mod(stack.Equity, 10000) != 0 {
				t.Errorf("exit %.0f price %.0f: equity %f not a 10k tranche", exit, price, stack.Equity)
			}
			if stack.Equity+stack.Debt != math.Round(stack.TotalProjectCost) {
				t.Errorf("exit %.0f price %.0f: stack does not reconcile", exit, price)
			}
		}
	}
}

func TestDegenerateCostsYieldEmptyStack(t *testing.T) {
	cfg := assumption.DefaultConfig()
	pf := &ProFormaResult{}
	stack := SizeCapitalStack(pf, cfg)
	if stack.TotalProjectCost != 0 || stack.Equity != 0 || stack.Debt != 0 {
		t.Errorf("zero-cost pro forma expected an empty stack, got %+v", stack)
	}
}
