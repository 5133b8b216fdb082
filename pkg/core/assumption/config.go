// Package assumption holds the process-wide pro forma assumption set.
// Every calculation takes an explicit *Config; there is no ambient global.
// The owning Context is responsible for the Config lifecycle and for firing
// memo invalidation whenever the set is replaced, since cached results
// silently become stale otherwise.
package assumption

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the flat assumption set driving every financial calculation.
// Rates are decimals (0.08 = 8%), dollar figures are whole dollars.
type Config struct {
	// ── Development ──
	UnitSF           float64 `yaml:"unit_sf" json:"unitSf"`                      // average habitable SF per unit
	BuildCostPSF     float64 `yaml:"build_cost_psf" json:"buildCostPsf"`         // all-in development $/SF at flat grade
	SlopeThresholdPct float64 `yaml:"slope_threshold_pct" json:"slopeThresholdPct"` // grade below which no adder applies
	SlopeStepPct     float64 `yaml:"slope_step_pct" json:"slopeStepPct"`         // percentage points per adder increment
	SlopeStepCostPSF float64 `yaml:"slope_step_cost_psf" json:"slopeStepCostPsf"` // $/SF added per increment
	SoftCostPct      float64 `yaml:"soft_cost_pct" json:"softCostPct"`           // soft costs as % of hard (display backsolve)
	AEPct            float64 `yaml:"ae_pct" json:"aePct"`                        // A&E as % of hard (display backsolve)
	DemoCost         float64 `yaml:"demo_cost" json:"demoCost"`
	SubdivisionPerUnit float64 `yaml:"subdivision_per_unit" json:"subdivisionPerUnit"`
	RelocationPerUnit  float64 `yaml:"relocation_per_unit" json:"relocationPerUnit"` // tenant relocation, RSO parcels only
	RelocationMonths   int     `yaml:"relocation_months" json:"relocationMonths"`    // hold extension on RSO parcels

	// ── Disposition ──
	TxnCostPct           float64 `yaml:"txn_cost_pct" json:"txnCostPct"`
	FixedDispositionCost float64 `yaml:"fixed_disposition_cost" json:"fixedDispositionCost"`

	// ── Financing & carry ──
	InterestRate   float64 `yaml:"interest_rate" json:"interestRate"`     // construction loan, annual
	PropertyTaxRate float64 `yaml:"property_tax_rate" json:"propertyTaxRate"` // annual, on acquisition price
	InsuranceAnnual float64 `yaml:"insurance_annual" json:"insuranceAnnual"`
	OrigFeePct     float64 `yaml:"orig_fee_pct" json:"origFeePct"` // on total build cost (engine) / debt (stack)
	EquityPct      float64 `yaml:"equity_pct" json:"equityPct"`    // equity as % of total project cost

	// ── Sponsor fees ──
	AcqFeePct         float64 `yaml:"acq_fee_pct" json:"acqFeePct"` // on acquisition price
	DispositionFeePct float64 `yaml:"disposition_fee_pct" json:"dispositionFeePct"` // on gross revenue
	AssetMgmtMonthly  float64 `yaml:"asset_mgmt_monthly" json:"assetMgmtMonthly"`
	DevMgmtMonthly    float64 `yaml:"dev_mgmt_monthly" json:"devMgmtMonthly"` // construction months only

	// ── Timeline ──
	PredevMonths       int `yaml:"predev_months" json:"predevMonths"`
	ConstructionMonths int `yaml:"construction_months" json:"constructionMonths"`
	SaleMonths         int `yaml:"sale_months" json:"saleMonths"`

	// ── Waterfall ──
	LPPrefRate    float64 `yaml:"lp_pref_rate" json:"lpPrefRate"`       // simple annual
	GPPromotePct  float64 `yaml:"gp_promote_pct" json:"gpPromotePct"`   // of profit above pref
	GPCoinvestPct float64 `yaml:"gp_coinvest_pct" json:"gpCoinvestPct"` // of total equity

	// ── Underwriting targets ──
	TargetMargin float64 `yaml:"target_margin" json:"targetMargin"` // for max supportable offer

	// ── BTR hold ──
	BTRRentMonthly float64 `yaml:"btr_rent_monthly" json:"btrRentMonthly"` // per unit
	BTROpexRatio   float64 `yaml:"btr_opex_ratio" json:"btrOpexRatio"`
	BTRCapRate     float64 `yaml:"btr_cap_rate" json:"btrCapRate"`
	BTRRefiLTV     float64 `yaml:"btr_refi_ltv" json:"btrRefiLtv"`
	BTRPermRate    float64 `yaml:"btr_perm_rate" json:"btrPermRate"`

	// ── Comp matching ──
	CompTarget   int     `yaml:"comp_target" json:"compTarget"`     // minimum sample before backfill stops
	GridCellDeg  float64 `yaml:"grid_cell_deg" json:"gridCellDeg"`  // spatial index cell edge

	// ── Sensitivity ──
	SensitivitySteps    int     `yaml:"sensitivity_steps" json:"sensitivitySteps"`       // values per axis, odd so the base sits centered
	SensitivityDeltaPct float64 `yaml:"sensitivity_delta_pct" json:"sensitivityDeltaPct"` // symmetric swing at the grid edge
}

// HoldMonths returns the total base hold period.
func (c *Config) HoldMonths() int {
	return c.PredevMonths + c.ConstructionMonths + c.SaleMonths
}

// DefaultConfig returns the standard assumption set. Figures trace to the
// market configuration of the original deal finder where one existed and to
// the reference deal analysis otherwise.
func DefaultConfig() *Config {
	return &Config{
		UnitSF:            1350,
		BuildCostPSF:      450,
		SlopeThresholdPct: 5,
		SlopeStepPct:      5,
		SlopeStepCostPSF:  15,
		SoftCostPct:       0.25,
		AEPct:             0.04,
		DemoCost:          25000,
		SubdivisionPerUnit: 7500,
		RelocationPerUnit:  20000,
		RelocationMonths:   4,

		TxnCostPct:           0.06,
		FixedDispositionCost: 50000,

		InterestRate:    0.105,
		PropertyTaxRate: 0.0125,
		InsuranceAnnual: 15000,
		OrigFeePct:      0.01,
		EquityPct:       0.35,

		AcqFeePct:         0.01,
		DispositionFeePct: 0.01,
		AssetMgmtMonthly:  5000,
		DevMgmtMonthly:    7500,

		PredevMonths:       6,
		ConstructionMonths: 12,
		SaleMonths:         6,

		LPPrefRate:    0.08,
		GPPromotePct:  0.20,
		GPCoinvestPct: 0.10,

		TargetMargin: 0.15,

		BTRRentMonthly: 4500,
		BTROpexRatio:   0.30,
		BTRCapRate:     0.05,
		BTRRefiLTV:     0.65,
		BTRPermRate:    0.065,

		CompTarget:  5,
		GridCellDeg: 0.01,

		SensitivitySteps:    5,
		SensitivityDeltaPct: 0.20,
	}
}

// Hash fingerprints the assumption set for cache keying. Two configs with
// identical values share a hash regardless of how they were loaded.
func (c *Config) Hash() string {
	data, _ := json.Marshal(c)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum[:8])
}

// LoadFile reads a YAML assumption file over the defaults, so partial files
// only override what they name.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assumptions: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse assumptions %s: %w", path, err)
	}
	return cfg, nil
}
