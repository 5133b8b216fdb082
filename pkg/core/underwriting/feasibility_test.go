package underwriting

import (
	"testing"

	"dealfinder/pkg/models"
)

func TestDensityCapR1(t *testing.T) {
	// 15,000 / 1200 = 12.5 -> floor 12 -> capped at 10.
	l := &models.Listing{LotSF: 15000, Zone: models.ZoneR1}
	res := MaxUnits(l)
	if res.Units != 10 {
		t.Errorf("15,000 SF R1 expected 10 units, got %d", res.Units)
	}
	if res.LayoutMax != -1 {
		t.Errorf("layout cap should not be evaluated without width/depth")
	}
}

func TestDensityCapMultiFamily(t *testing.T) {
	// 4,800 / 600 = 8 on the multi-family track.
	l := &models.Listing{LotSF: 4800, Zone: models.ZoneR3}
	if res := MaxUnits(l); res.Units != 8 {
		t.Errorf("4,800 SF R3 expected 8 units, got %d", res.Units)
	}
}

func TestDensityCapFloorsAtOne(t *testing.T) {
	l := &models.Listing{LotSF: 500, Zone: models.ZoneR1}
	if res := MaxUnits(l); res.Units != 1 {
		t.Errorf("tiny lot expected 1 unit floor, got %d", res.Units)
	}
	// Zero lot SF still lands on the floor, not a zero or negative count.
	l.LotSF = 0
	if res := MaxUnits(l); res.Units != 1 {
		t.Errorf("zero lot SF expected 1 unit, got %d", res.Units)
	}
}

func TestUnknownZoneUsesConservativeTrack(t *testing.T) {
	// Unrecognized zone gets the 1200 SF/unit single-family policy.
	l := &models.Listing{LotSF: 6000, Zone: models.Zone("C2")}
	if res := MaxUnits(l); res.Units != 5 {
		t.Errorf("unknown zone expected 5 units at 1200 SF/unit, got %d", res.Units)
	}
}

func TestLayoutCapBinds(t *testing.T) {
	// R2, 9,000 SF, 50 ft x 180 ft. Density: 9000/600 = 15 -> 10.
	// Layout: buildable width 50-20-4 = 26 >= 20; parcelDepth = 1200/50 = 24;
	// front 15 (MF), rear 4; (180-15-4)/24 = 6.7 -> 6. Binds below 10.
	l := &models.Listing{LotSF: 9000, Zone: models.ZoneR2, LotWidth: 50, LotDepth: 180}
	res := MaxUnits(l)
	if res.Units != 6 {
		t.Errorf("layout cap expected 6 units, got %d", res.Units)
	}
	if !res.LayoutBound {
		t.Error("LayoutBound expected true")
	}
	if res.DensityUnits != 10 {
		t.Errorf("density cap expected 10, got %d", res.DensityUnits)
	}
}

func TestLayoutCapNeverBelowTwo(t *testing.T) {
	// Narrow deep lot: width 45 -> buildable 21; parcelDepth 26.67;
	// (60-15-4)/26.67 = 1.5 -> layoutMax 1 -> clamped up to 2.
	l := &models.Listing{LotSF: 8000, Zone: models.ZoneR2, LotWidth: 45, LotDepth: 60}
	res := MaxUnits(l)
	if res.Units != 2 {
		t.Errorf("binding layout expected clamp to 2 units, got %d", res.Units)
	}
}

func TestLayoutInfeasibleWidthDoesNotBind(t *testing.T) {
	// Width 40 leaves 40-20-4 = 16 < 20: layout infeasible, layoutMax 0,
	// which does not bind; density governs.
	l := &models.Listing{LotSF: 6000, Zone: models.ZoneR2, LotWidth: 40, LotDepth: 150}
	res := MaxUnits(l)
	if res.LayoutMax != 0 {
		t.Errorf("layoutMax expected 0, got %d", res.LayoutMax)
	}
	if res.Units != res.DensityUnits {
		t.Errorf("zero layoutMax must not bind: units %d, density %d", res.Units, res.DensityUnits)
	}
}

func TestSingleFamilyFrontSetback(t *testing.T) {
	// R1 uses the 20 ft front setback. Width 60 -> parcelDepth 20;
	// (124-20-4)/20 = 5 exactly.
	l := &models.Listing{LotSF: 12000, Zone: models.ZoneR1, LotWidth: 60, LotDepth: 124}
	res := MaxUnits(l)
	if res.LayoutMax != 5 {
		t.Errorf("layoutMax expected 5, got %d", res.LayoutMax)
	}
}

func TestUnitBoundsHold(t *testing.T) {
	zones := []models.Zone{models.ZoneR1, models.ZoneR2, models.ZoneR3, models.ZoneR4, models.ZoneLand, models.Zone("?")}
	for _, z := range zones {
		for _, lotSF := range []float64{0, 100, 1200, 6000, 50000, 1e7} {
			l := &models.Listing{LotSF: lotSF, Zone: z}
			res := MaxUnits(l)
			if res.Units < 1 || res.Units > 10 {
				t.Errorf("zone %s lot %.0f: units %d out of [1,10]", z, lotSF, res.Units)
			}
			if res.Units != res.DensityUnits {
				t.Errorf("zone %s lot %.0f: without width/depth units must equal density cap", z, lotSF)
			}
		}
	}
}
