// Package underwriting computes development feasibility and economics for a
// parcel: unit-count caps, cost buildup, revenue, carry, capital-stack
// sizing, the monthly cash-flow schedule and exit waterfall, the
// build-to-rent hold alternative, and reduced-form sensitivity grids.
// Everything is a pure function of (listing, exit $/SF, assumption set);
// the Engine layers memoization and invalidation on top.
package underwriting

import (
	"math"

	"dealfinder/pkg/models"
)

// Density statute parameters. Lot SF per unit by zone track, and the hard
// cap on units per parcel.
const (
	minLotPerUnitSF = 1200 // single-family track: R1, LAND, unknown
	minLotPerUnitMF = 600  // multi-family track: R2, R3, R4
	maxUnitsPerLot  = 10

	// Layout geometry, feet.
	driveAisleWidth   = 20
	sideSetback       = 4
	minBuildableWidth = 20
	frontSetbackMF    = 15
	frontSetbackSF    = 20
	rearSetback       = 4
	parcelAreaSF      = 1200 // target footprint area per unit parcel
)

// UnitCapResult carries the two independent unit caps plus the binding
// count, so the provenance of the governing constraint survives into the
// pro forma.
type UnitCapResult struct {
	DensityUnits int  `json:"densityUnits"`
	LayoutMax    int  `json:"layoutMax"` // -1 when width/depth unknown
	Units        int  `json:"units"`
	LayoutBound  bool `json:"layoutBound"`
}

// MaxUnits computes the unit count for a listing. The density cap always
// applies; the layout cap is evaluated only when lot width and depth are
// both known, and when it binds the count never collapses below 2.
func MaxUnits(l *models.Listing) UnitCapResult {
	// 1. Density cap from lot area and zone track.
	perUnit := float64(minLotPerUnitSF)
	if l.Zone.MultiFamily() {
		perUnit = minLotPerUnitMF
	}
	density := int(math.Floor(l.LotSF / perUnit))
	if density < 1 {
		density = 1
	}
	if density > maxUnitsPerLot {
		density = maxUnitsPerLot
	}

	res := UnitCapResult{DensityUnits: density, LayoutMax: -1, Units: density}
	if l.LotWidth <= 0 || l.LotDepth <= 0 {
		return res
	}

	// 2. Layout cap: reserve the drive aisle and side setback from width,
	// then stack unit parcels along the depth.
	buildableWidth := l.LotWidth - driveAisleWidth - sideSetback
	if buildableWidth < minBuildableWidth {
		res.LayoutMax = 0
		return res
	}
	parcelDepth := parcelAreaSF / l.LotWidth
	front := float64(frontSetbackSF)
	if l.Zone.MultiFamily() {
		front = frontSetbackMF
	}
	layoutMax := int(math.Floor((l.LotDepth - front - rearSetback) / parcelDepth))
	if layoutMax < 0 {
		layoutMax = 0
	}
	if layoutMax > maxUnitsPerLot {
		layoutMax = maxUnitsPerLot
	}
	res.LayoutMax = layoutMax

	// 3. The layout cap binds only when positive and strictly below the
	// density cap, and never pushes the count below 2 units.
	if layoutMax > 0 && layoutMax < density {
		res.Units = layoutMax
		if res.Units < 2 {
			res.Units = 2
		}
		res.LayoutBound = true
	}
	return res
}
