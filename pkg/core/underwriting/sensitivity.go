package underwriting

import (
	"math"

	"dealfinder/pkg/core/assumption"
)

// SensitivityGrid is a 2-D scan of reduced-form returns. Rows follow the
// row axis values, columns the column axis values.
type SensitivityGrid struct {
	Name      string      `json:"name"`
	RowLabel  string      `json:"rowLabel"`
	ColLabel  string      `json:"colLabel"`
	RowValues []float64   `json:"rowValues"`
	ColValues []float64   `json:"colValues"`
	MOIC      [][]float64 `json:"moic"`
	IRR       [][]float64 `json:"irr"`
}

// ReducedMOIC is the fast grid-scan approximation of the equity multiple.
// It deliberately skips the monthly draw schedule and the waterfall's
// tranche ordering, so it does not agree with RunWaterfall to the cent.
func ReducedMOIC(revenue, cost, equityPct, promotePct float64) float64 {
	if cost <= 0 || equityPct <= 0 {
		return 0
	}
	return 1 + (1-promotePct)*(revenue-cost)/(cost*equityPct)
}

// ReducedIRR annualizes a reduced-form MOIC over the hold. A wiped-out
// multiple returns -1 (total loss) rather than a NaN.
func ReducedIRR(moic float64, holdMonths int) float64 {
	if moic <= 0 {
		return -1
	}
	if holdMonths <= 0 {
		return 0
	}
	return math.Pow(moic, 12/float64(holdMonths)) - 1
}

// axisValues spans a symmetric percentage swing around a base scalar.
func axisValues(base float64, cfg *assumption.Config) []float64 {
	steps := cfg.SensitivitySteps
	if steps < 2 {
		steps = 2
	}
	out := make([]float64, steps)
	for i := 0; i < steps; i++ {
		// Linear from -delta to +delta across the axis.
		frac := -cfg.SensitivityDeltaPct + 2*cfg.SensitivityDeltaPct*float64(i)/float64(steps-1)
		out[i] = base * (1 + frac)
	}
	return out
}

// scenario recomputes the reduced-form revenue and cost for one grid cell
// from first principles, so every axis perturbation flows through build
// cost, carry, and revenue consistently.
func scenario(pf *ProFormaResult, cfg *assumption.Config, exitPSF, buildPSF, price float64, holdMonths float64) (revenue, cost float64) {
	totalBuild := pf.BuildableSF*buildPSF + pf.RelocationCost
	holdYears := holdMonths / 12

	interest := 0.5 * totalBuild * cfg.InterestRate * holdYears
	tax := price * cfg.PropertyTaxRate * holdYears
	insurance := cfg.InsuranceAnnual * holdYears
	origFee := totalBuild * cfg.OrigFeePct

	cost = price + totalBuild + interest + tax + insurance + origFee

	gross := pf.BuildableSF * exitPSF
	if gross > 0 {
		revenue = gross*(1-cfg.TxnCostPct) - cfg.FixedDispositionCost
	}
	return revenue, cost
}

// GenerateGrids builds the three standard sensitivity grids for a deal:
// exit $/SF x build $/SF, exit $/SF x purchase price, and hold months x
// exit $/SF.
func GenerateGrids(pf *ProFormaResult, cfg *assumption.Config) []SensitivityGrid {
	exitAxis := axisValues(pf.ExitPSF, cfg)
	buildAxis := axisValues(pf.AdjBuildPSF, cfg)
	priceAxis := axisValues(pf.AcquisitionPrice, cfg)
	holdAxis := axisValues(float64(pf.HoldMonths), cfg)
	hold := float64(pf.HoldMonths)

	cell := func(exitPSF, buildPSF, price, holdMonths float64) (float64, float64) {
		rev, cost := scenario(pf, cfg, exitPSF, buildPSF, price, holdMonths)
		moic := ReducedMOIC(rev, cost, cfg.EquityPct, cfg.GPPromotePct)
		return moic, ReducedIRR(moic, int(math.Round(holdMonths)))
	}

	grids := []SensitivityGrid{
		{Name: "exit_x_build", RowLabel: "exit $/SF", ColLabel: "build $/SF",
			RowValues: exitAxis, ColValues: buildAxis},
		{Name: "exit_x_price", RowLabel: "exit $/SF", ColLabel: "purchase price",
			RowValues: exitAxis, ColValues: priceAxis},
		{Name: "hold_x_exit", RowLabel: "hold months", ColLabel: "exit $/SF",
			RowValues: holdAxis, ColValues: exitAxis},
	}

	for g := range grids {
		grid := &grids[g]
		grid.MOIC = make([][]float64, len(grid.RowValues))
		grid.IRR = make([][]float64, len(grid.RowValues))
		for i, rv := range grid.RowValues {
			grid.MOIC[i] = make([]float64, len(grid.ColValues))
			grid.IRR[i] = make([]float64, len(grid.ColValues))
			for j, cv := range grid.ColValues {
				var moic, irr float64
				switch grid.Name {
				case "exit_x_build":
					moic, irr = cell(rv, cv, pf.AcquisitionPrice, hold)
				case "exit_x_price":
					moic, irr = cell(rv, pf.AdjBuildPSF, cv, hold)
				case "hold_x_exit":
					moic, irr = cell(cv, pf.AdjBuildPSF, pf.AcquisitionPrice, rv)
				}
				grid.MOIC[i][j] = moic
				grid.IRR[i][j] = irr
			}
		}
	}
	return grids
}
