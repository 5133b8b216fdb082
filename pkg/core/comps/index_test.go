package comps

import (
	"math"
	"testing"

	"dealfinder/pkg/models"
)

// Comps scattered around a base point at known offsets. 0.01 deg of
// latitude is ~0.69 miles.
func testComps() []models.CompRecord {
	return []models.CompRecord{
		{Lat: 34.0500, Lng: -118.2500, Price: 900000, SqFt: 1500, Zone: models.ZoneR2},
		{Lat: 34.0510, Lng: -118.2500, Price: 950000, SqFt: 1600, Zone: models.ZoneR2}, // ~0.07 mi north
		{Lat: 34.0600, Lng: -118.2500, Price: 880000, SqFt: 1400, Zone: models.ZoneR2}, // ~0.69 mi north
		{Lat: 34.2000, Lng: -118.2500, Price: 870000, SqFt: 1450, Zone: models.ZoneR2}, // ~10 mi north
		{Lat: 0, Lng: 0, Price: 1, SqFt: 1, Zone: models.ZoneR1},                       // no coords, skipped
	}
}

func TestSpatialIndexSkipsRecordsWithoutCoordinates(t *testing.T) {
	idx := NewSpatialIndex(testComps(), 0.01)
	if idx.Len() != 4 {
		t.Errorf("Len expected 4, got %d", idx.Len())
	}
}

func TestQueryRadiusFiltering(t *testing.T) {
	idx := NewSpatialIndex(testComps(), 0.01)

	// 1 mile catches the three nearby comps but not the one 10 miles out.
	got := idx.Query(34.0500, -118.2500, 1.0)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates within 1 mi, got %d", len(got))
	}
	for _, c := range got {
		if c.DistMi > 1.0 {
			t.Errorf("candidate at %.3f mi exceeds the radius", c.DistMi)
		}
	}

	// 15 miles catches all four.
	got = idx.Query(34.0500, -118.2500, 15.0)
	if len(got) != 4 {
		t.Errorf("expected 4 candidates within 15 mi, got %d", len(got))
	}
}

func TestQueryDistanceAnnotation(t *testing.T) {
	idx := NewSpatialIndex(testComps(), 0.01)
	got := idx.Query(34.0500, -118.2500, 0.01)
	if len(got) != 1 {
		t.Fatalf("expected only the colocated comp, got %d", len(got))
	}
	if got[0].DistMi != 0 {
		t.Errorf("colocated comp distance expected 0, got %f", got[0].DistMi)
	}

	// The comp 0.001 deg north is 0.001*69 = 0.069 mi away.
	got = idx.Query(34.0500, -118.2500, 0.1)
	var found bool
	for _, c := range got {
		if c.Lat == 34.0510 {
			found = true
			if math.Abs(c.DistMi-0.069) > 0.001 {
				t.Errorf("distance expected ~0.069 mi, got %f", c.DistMi)
			}
		}
	}
	if !found {
		t.Error("comp 0.069 mi away not returned at 0.1 mi radius")
	}
}

func TestQueryDegenerateInputs(t *testing.T) {
	idx := NewSpatialIndex(testComps(), 0.01)
	if got := idx.Query(34.05, -118.25, 0); got != nil {
		t.Errorf("zero radius expected nil, got %d candidates", len(got))
	}

	empty := NewSpatialIndex(nil, 0.01)
	if got := empty.Query(34.05, -118.25, 5); got != nil {
		t.Errorf("empty index expected nil, got %d candidates", len(got))
	}
}

func TestCellSizeDefault(t *testing.T) {
	// A zero cell size falls back to 0.01 deg rather than dividing by zero.
	idx := NewSpatialIndex(testComps(), 0)
	if got := idx.Query(34.0500, -118.2500, 1.0); len(got) != 3 {
		t.Errorf("default cell size query expected 3 candidates, got %d", len(got))
	}
}
