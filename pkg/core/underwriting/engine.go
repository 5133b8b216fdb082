package underwriting

import (
	"fmt"
	"math"
	"sync"

	"dealfinder/pkg/core/assumption"
	"dealfinder/pkg/models"
)

// ProFormaResult is the full development pro forma for one listing at one
// exit $/SF. Plain data; produced once per (coordinate, exit) and cached.
type ProFormaResult struct {
	Units        int     `json:"units"`
	DensityUnits int     `json:"densityUnits"`
	LayoutMax    int     `json:"layoutMax"`
	LayoutBound  bool    `json:"layoutBound"`
	BuildableSF  float64 `json:"buildableSf"`
	LotSFPerUnit float64 `json:"lotSfPerUnit"`

	ExitPSF         float64 `json:"exitPsf"`
	AdjBuildPSF     float64 `json:"adjBuildPsf"` // slope-adjusted all-in rate
	HardCost        float64 `json:"hardCost"`
	SoftCost        float64 `json:"softCost"` // includes tenant relocation
	DemoCost        float64 `json:"demoCost"`
	SubdivisionCost float64 `json:"subdivisionCost"`
	AECost          float64 `json:"aeCost"`
	RelocationCost  float64 `json:"relocationCost"`
	TotalBuildCost  float64 `json:"totalBuildCost"`

	HoldMonths int `json:"holdMonths"`

	GrossRevenue float64 `json:"grossRevenue"`
	NetRevenue   float64 `json:"netRevenue"`

	CarryInterest  float64 `json:"carryInterest"`
	PropertyTax    float64 `json:"propertyTax"`
	Insurance      float64 `json:"insurance"`
	OriginationFee float64 `json:"originationFee"`
	TotalCarry     float64 `json:"totalCarry"`

	AcquisitionPrice float64 `json:"acquisitionPrice"`
	TotalCost        float64 `json:"totalCost"`
	Profit           float64 `json:"profit"`
	Margin           float64 `json:"margin"`
	MaxOffer         float64 `json:"maxOffer"`

	AllInPSF     float64 `json:"allInPsf"`
	BreakEvenPSF float64 `json:"breakEvenPsf"`
}

// CalculateProForma underwrites one listing at the given exit $/SF. Pure;
// missing numeric inputs degrade to zero-valued metrics, never errors.
func CalculateProForma(l *models.Listing, exitPSF float64, cfg *assumption.Config) *ProFormaResult {
	caps := MaxUnits(l)
	units := float64(caps.Units)

	res := &ProFormaResult{
		Units:            caps.Units,
		DensityUnits:     caps.DensityUnits,
		LayoutMax:        caps.LayoutMax,
		LayoutBound:      caps.LayoutBound,
		ExitPSF:          exitPSF,
		AcquisitionPrice: l.Price,
		HoldMonths:       cfg.HoldMonths(),
	}
	if units > 0 && l.LotSF > 0 {
		res.LotSFPerUnit = l.LotSF / units
	}

	// 1. Buildable area and the slope-adjusted all-in build rate. The rate
	// steps up per 5-point slope increment above the threshold, ceiling
	// rounded so a 6% grade already pays the first increment.
	res.BuildableSF = units * cfg.UnitSF
	res.AdjBuildPSF = cfg.BuildCostPSF
	if l.SlopePct > cfg.SlopeThresholdPct && cfg.SlopeStepPct > 0 {
		steps := math.Ceil((l.SlopePct - cfg.SlopeThresholdPct) / cfg.SlopeStepPct)
		res.AdjBuildPSF += steps * cfg.SlopeStepCostPSF
	}

	// 2. Tenant relocation applies only on rent-stabilized multi-family
	// parcels, and stretches the hold.
	if l.RSORisk && l.Zone.MultiFamily() {
		res.RelocationCost = units * cfg.RelocationPerUnit
		res.HoldMonths += cfg.RelocationMonths
	}
	res.TotalBuildCost = res.BuildableSF*res.AdjBuildPSF + res.RelocationCost

	// 3. Display decomposition. Demo and subdivision are fixed amounts; the
	// remainder is backsolved into hard/soft/A&E at fixed percentages, with
	// A&E taking the exact residual so the pieces always sum back to the
	// total build cost.
	res.DemoCost = cfg.DemoCost
	res.SubdivisionCost = units * cfg.SubdivisionPerUnit
	remainder := res.TotalBuildCost - res.DemoCost - res.SubdivisionCost - res.RelocationCost
	if remainder > 0 {
		res.HardCost = remainder / (1 + cfg.SoftCostPct + cfg.AEPct)
		res.SoftCost = res.HardCost*cfg.SoftCostPct + res.RelocationCost
		res.AECost = res.TotalBuildCost - res.DemoCost - res.SubdivisionCost - res.HardCost - res.SoftCost
	} else {
		res.DemoCost = res.TotalBuildCost
		res.SubdivisionCost = 0
	}

	// 4. Revenue.
	res.GrossRevenue = res.BuildableSF * exitPSF
	if res.GrossRevenue > 0 {
		res.NetRevenue = res.GrossRevenue*(1-cfg.TxnCostPct) - cfg.FixedDispositionCost
	}

	// 5. Carry. Interest approximates the construction loan at 50% average
	// outstanding balance over the hold; tax and insurance pro-rate over the
	// hold; origination is charged on the total build cost.
	holdYears := float64(res.HoldMonths) / 12
	res.CarryInterest = 0.5 * res.TotalBuildCost * cfg.InterestRate * holdYears
	res.PropertyTax = l.Price * cfg.PropertyTaxRate * holdYears
	res.Insurance = cfg.InsuranceAnnual * holdYears
	res.OriginationFee = res.TotalBuildCost * cfg.OrigFeePct
	res.TotalCarry = res.CarryInterest + res.PropertyTax + res.Insurance + res.OriginationFee

	// 6. Profit and margin.
	res.TotalCost = l.Price + res.TotalBuildCost + res.TotalCarry
	res.Profit = res.NetRevenue - res.TotalCost
	if res.NetRevenue > 0 {
		res.Margin = res.Profit / res.NetRevenue
	}

	// 7. Maximum supportable offer. Property tax carry scales with the
	// acquisition price, so the target-margin equation has one linear
	// unknown:
	//   net*(1-m) = P + build + carryExTax + P*taxRate*hold/12
	carryExTax := res.CarryInterest + res.Insurance + res.OriginationFee
	offer := (res.NetRevenue*(1-cfg.TargetMargin) - res.TotalBuildCost - carryExTax) /
		(1 + cfg.PropertyTaxRate*holdYears)
	if offer > 0 {
		res.MaxOffer = offer
	}

	// 8. Display $/SF metrics.
	if res.BuildableSF > 0 {
		res.AllInPSF = res.TotalCost / res.BuildableSF
		if cfg.TxnCostPct < 1 {
			res.BreakEvenPSF = res.TotalCost / (res.BuildableSF * (1 - cfg.TxnCostPct))
		}
	}
	return res
}

// Engine memoizes pro forma and BTR results per coordinate. It registers
// itself for invalidation with the assumption context, so a Replace clears
// both caches before any caller can read a stale entry.
type Engine struct {
	ctx *assumption.Context

	mu      sync.Mutex
	memo    map[string]*ProFormaResult
	btrMemo map[string]*BTRResult
}

// NewEngine wires an engine to the live assumption set.
func NewEngine(ctx *assumption.Context) *Engine {
	e := &Engine{
		ctx:     ctx,
		memo:    make(map[string]*ProFormaResult),
		btrMemo: make(map[string]*BTRResult),
	}
	ctx.OnReplace(e.Invalidate)
	return e
}

func memoKey(l *models.Listing, exitPSF float64) string {
	return fmt.Sprintf("%s|%.2f", l.CoordKey(), exitPSF)
}

// Underwrite returns the memoized pro forma for a listing at an exit $/SF,
// computing it on first use.
func (e *Engine) Underwrite(l *models.Listing, exitPSF float64) *ProFormaResult {
	// Read the config before taking the memo lock; Replace holds the context
	// lock while invalidating, so nesting the two here would deadlock.
	cfg := e.ctx.Config()
	key := memoKey(l, exitPSF)
	e.mu.Lock()
	defer e.mu.Unlock()
	if cached, ok := e.memo[key]; ok {
		return cached
	}
	res := CalculateProForma(l, exitPSF, cfg)
	e.memo[key] = res
	return res
}

// AnalyzeBTR returns the memoized hold-as-rental alternative for a listing,
// derived from its pro forma unit count and total cost.
func (e *Engine) AnalyzeBTR(l *models.Listing, exitPSF float64) *BTRResult {
	key := memoKey(l, exitPSF)
	e.mu.Lock()
	if cached, ok := e.btrMemo[key]; ok {
		e.mu.Unlock()
		return cached
	}
	e.mu.Unlock()

	pf := e.Underwrite(l, exitPSF)
	res := AnalyzeBTR(pf.Units, pf.TotalCost, e.ctx.Config())

	e.mu.Lock()
	e.btrMemo[key] = res
	e.mu.Unlock()
	return res
}

// Invalidate clears both memo caches. Runs automatically on assumption
// Replace; exposed for callers that swap datasets.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.memo = make(map[string]*ProFormaResult)
	e.btrMemo = make(map[string]*BTRResult)
}

// CacheSize reports the number of memoized pro formas, for diagnostics.
func (e *Engine) CacheSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.memo)
}
