package dataset

import (
	"testing"

	"dealfinder/pkg/models"
)

func TestParseListingsPlainJSON(t *testing.T) {
	data := []byte(`[
		{"lat": 34.05, "lng": -118.25, "address": "123 Main St", "lotSf": 12000, "zone": "R3", "price": 768000, "exitPsf": 850}
	]`)
	listings, err := ParseListings(data)
	if err != nil {
		t.Fatalf("ParseListings: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	l := listings[0]
	if l.Zone != models.ZoneR3 || l.LotSF != 12000 || l.ZonePSF != 850 {
		t.Errorf("fields mis-decoded: %+v", l)
	}
}

func TestParseListingsJSExport(t *testing.T) {
	// The upstream exporter emits JS modules with unquoted keys and
	// trailing commas.
	data := []byte(`const LISTINGS = [
		{
			lat: 34.05,
			lng: -118.25,
			lotSf: 6000,
			zone: "R2",
			price: 500000,
		},
	];`)
	listings, err := ParseListings(data)
	if err != nil {
		t.Fatalf("ParseListings js export: %v", err)
	}
	if len(listings) != 1 || listings[0].Price != 500000 {
		t.Errorf("js export mis-decoded: %+v", listings)
	}
}

func TestParseListingsFailsFastOnMissingCoordinates(t *testing.T) {
	data := []byte(`[{"lat": 0, "lng": 0, "lotSf": 6000, "zone": "R2"}]`)
	if _, err := ParseListings(data); err == nil {
		t.Error("missing coordinates expected a hard error")
	}
}

func TestParseCompsClassifiesTiers(t *testing.T) {
	data := []byte(`[
		{"lat": 34.05, "lng": -118.25, "price": 900000, "sqft": 1500, "zone": "R2", "yb": 2022},
		{"lat": 34.06, "lng": -118.25, "price": 600000, "sqft": 1500, "zone": "R2", "yb": 1950},
		{"lat": 34.07, "lng": -118.25, "price": 1200000, "sqft": 1500, "zone": "R2", "yb": 1955},
		{"lat": 34.08, "lng": -118.25, "price": 610000, "sqft": 1500, "zone": "R2", "yb": 1960}
	]`)
	comps, err := ParseComps(data)
	if err != nil {
		t.Fatalf("ParseComps: %v", err)
	}

	// ppsf values 600, 400, 800, 406.67; median = (406.67+600)/2 = 503.33.
	// Comp 0 is new -> T1. Comp 2 is old but 800 >= 1.25*503.33 -> T1
	// (remodel signal). Comps 1 and 3 -> T2.
	want := []int{models.TierNewOrRemodeled, models.TierExisting,
		models.TierNewOrRemodeled, models.TierExisting}
	for i, c := range comps {
		if c.Tier != want[i] {
			t.Errorf("comp %d tier expected %d, got %d", i, want[i], c.Tier)
		}
	}
}

func TestClassifyTiersRespectsUpstreamTier(t *testing.T) {
	comps := []models.CompRecord{
		{Lat: 34.05, Lng: -118.25, Price: 900000, SqFt: 1500, YearBuilt: 2023, Tier: models.TierExisting},
	}
	ClassifyTiers(comps)
	if comps[0].Tier != models.TierExisting {
		t.Errorf("pre-classified tier overwritten: %d", comps[0].Tier)
	}
}
