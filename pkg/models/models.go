// Package models holds the plain data records shared across the engine:
// parcels under evaluation and historical comparable sales. Records are
// immutable once loaded; every derived result is computed from them plus
// the active assumption set.
package models

import (
	"fmt"
	"time"
)

// Zone is the regulatory density classification of a parcel.
// R1 is lowest density, R4 highest, Land is unimproved.
type Zone string

const (
	ZoneR1   Zone = "R1"
	ZoneR2   Zone = "R2"
	ZoneR3   Zone = "R3"
	ZoneR4   Zone = "R4"
	ZoneLand Zone = "LAND"
)

// MultiFamily reports whether the zone is on the multi-family track.
// Unrecognized zones are treated as single-family (the most conservative
// density policy).
func (z Zone) MultiFamily() bool {
	switch z {
	case ZoneR2, ZoneR3, ZoneR4:
		return true
	}
	return false
}

// AdjacentZones returns the zones considered one density step away.
// Used by the comp selector when strict zone matching is not requested.
func AdjacentZones(z Zone) []Zone {
	switch z {
	case ZoneR1:
		return []Zone{ZoneR2}
	case ZoneR2:
		return []Zone{ZoneR1, ZoneR3}
	case ZoneR3:
		return []Zone{ZoneR2, ZoneR4}
	case ZoneR4:
		return []Zone{ZoneR3}
	case ZoneLand:
		return []Zone{ZoneR1}
	}
	return nil
}

// Listing is a parcel under evaluation. Coordinates are the record identity;
// everything else may be zero/missing and degrades to neutral values
// downstream. Owned by the caller, read-only to the engine.
type Listing struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`

	LotSF    float64 `json:"lotSf"`
	LotWidth float64 `json:"lotWidth,omitempty"` // feet, 0 = unknown
	LotDepth float64 `json:"lotDepth,omitempty"` // feet, 0 = unknown
	Zone     Zone    `json:"zone"`
	Price    float64 `json:"price"` // asking
	SlopePct float64 `json:"slope,omitempty"`
	RSORisk  bool    `json:"rsoRisk,omitempty"` // rent-stabilization / tenant-relocation exposure

	// Raw exit-price signals stamped by the upstream enrichment stage.
	// Presence (non-zero) determines the comp matching source.
	SubdivPSF float64 `json:"subdivPsf,omitempty"`
	NewConPSF float64 `json:"newconPpsf,omitempty"`
	ZonePSF   float64 `json:"exitPsf,omitempty"`

	// Per-listing search overrides; 0 falls back to source defaults.
	SubdivRadiusMi  float64 `json:"subdivRadius,omitempty"`
	ZoneRadiusMi    float64 `json:"zoneRadius,omitempty"`
	CompTarget      int     `json:"compTarget,omitempty"`
	StrictZoneMatch bool    `json:"strictZone,omitempty"`
}

// Validate fails fast on malformed identity. Missing coordinates would
// silently produce nonsense numbers everywhere downstream, so they are the
// one hard error in the data model.
func (l *Listing) Validate() error {
	if l.Lat == 0 || l.Lng == 0 {
		return fmt.Errorf("listing %q: missing coordinates", l.Address)
	}
	if l.Lat < -90 || l.Lat > 90 || l.Lng < -180 || l.Lng > 180 {
		return fmt.Errorf("listing %q: coordinates out of range (%.6f, %.6f)", l.Address, l.Lat, l.Lng)
	}
	return nil
}

// CoordKey returns the canonical memoization key for this listing.
func (l *Listing) CoordKey() string {
	return CoordKey(l.Lat, l.Lng)
}

// CoordKey canonicalizes a coordinate pair for use as a cache key.
// Six decimals (~0.1m) matches the precision of the source datasets.
func CoordKey(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}

// Comp quality tiers, pre-classified upstream.
const (
	TierNewOrRemodeled = 1
	TierExisting       = 2
)

// CompRecord is a historical sale used to infer achievable exit pricing.
type CompRecord struct {
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	Address      string    `json:"address,omitempty"`
	Price        float64   `json:"price"`
	SqFt         float64   `json:"sqft"`
	PPSF         float64   `json:"ppsf"` // derived price/sqft when absent
	Zone         Zone      `json:"zone"`
	YearBuilt    int       `json:"yb,omitempty"`
	PropertyType string    `json:"type,omitempty"`
	Tier         int       `json:"t,omitempty"`
	SaleDate     time.Time `json:"saleDate,omitempty"`
}

// Validate fails fast on malformed identity, mirroring Listing.Validate.
func (c *CompRecord) Validate() error {
	if c.Lat == 0 || c.Lng == 0 {
		return fmt.Errorf("comp %q: missing coordinates", c.Address)
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("comp %q: coordinates out of range (%.6f, %.6f)", c.Address, c.Lat, c.Lng)
	}
	return nil
}

// EffectivePPSF returns the stored $/SF, deriving it from price and square
// footage when absent. Returns 0 when underlying data is missing.
func (c *CompRecord) EffectivePPSF() float64 {
	if c.PPSF > 0 {
		return c.PPSF
	}
	if c.SqFt > 0 {
		return c.Price / c.SqFt
	}
	return 0
}
