package comps

import (
	"sort"

	"dealfinder/pkg/core/assumption"
	"dealfinder/pkg/models"
)

// Source identifies which exit-price signal drove a match, in priority
// order: subdivision-specific, new-construction, zone-matched, or none.
type Source string

const (
	SourceSubdiv Source = "subdiv"
	SourceNewCon Source = "newcon"
	SourceZone   Source = "zone"
	SourceNone   Source = "none"
)

// Search parameters. Radii in miles.
const (
	defaultSubdivRadius = 2.0
	defaultNewConRadius = 2.0
	defaultZoneRadius   = 1.0
	maxWideRadius       = 5.0
	radiusTolerance     = 0.05 // tolerance band on the in-radius check

	minNewConYear = 2021 // modern product comparable to new townhomes
	minCompSF     = 1300
	maxCompSF     = 3500

	outlierMinSF   = 400  // below this the record is a data error or a teardown
	outlierMaxPPSF = 2000 // above this the sale is not residential-scale product
)

// MatchResult is the audited output of a selection: the comps that should
// drive the exit price, the wider reference set, the signal source, and the
// radius searched. Used is deterministic given identical inputs and
// assumption set; Reference is the queried superset minus Used minus
// discarded outliers.
type MatchResult struct {
	Used           []Candidate `json:"used"`
	Reference      []Candidate `json:"reference"`
	Source         Source      `json:"source"`
	SearchRadiusMi float64     `json:"searchRadius"`
}

// Selector matches listings against a shared spatial comp index.
type Selector struct {
	idx *SpatialIndex
	ctx *assumption.Context
}

// NewSelector wires a selector to an index and the live assumption set.
func NewSelector(idx *SpatialIndex, ctx *assumption.Context) *Selector {
	return &Selector{idx: idx, ctx: ctx}
}

func noMatch() MatchResult {
	return MatchResult{Used: []Candidate{}, Reference: []Candidate{}, Source: SourceNone}
}

// Select picks the comp subset for a listing. The aggregation of Used into a
// single exit $/SF is the enrichment stage's policy; the selector guarantees
// only the set and its provenance.
func (s *Selector) Select(l *models.Listing) MatchResult {
	if s.idx == nil || s.idx.Len() == 0 {
		return noMatch()
	}

	// 1. Source and search radius from listing field availability.
	var (
		source Source
		radius float64
	)
	switch {
	case l.SubdivPSF > 0:
		source, radius = SourceSubdiv, l.SubdivRadiusMi
		if radius <= 0 {
			radius = defaultSubdivRadius
		}
	case l.NewConPSF > 0:
		source, radius = SourceNewCon, defaultNewConRadius
	case l.ZonePSF > 0:
		source, radius = SourceZone, l.ZoneRadiusMi
		if radius <= 0 {
			radius = defaultZoneRadius
		}
	default:
		return noMatch()
	}

	target := l.CompTarget
	if target <= 0 {
		target = s.ctx.Config().CompTarget
	}

	// 2. Query wide for backfill headroom.
	wide := radius * 2
	if wide > maxWideRadius {
		wide = maxWideRadius
	}
	candidates := s.idx.Query(l.Lat, l.Lng, wide)

	// 3-4. Acceptance + outlier classification.
	res := MatchResult{Source: source, SearchRadiusMi: radius,
		Used: []Candidate{}, Reference: []Candidate{}}
	for _, c := range candidates {
		inRadius := c.DistMi <= radius+radiusTolerance
		accepted := s.accept(source, l, c, inRadius)
		outlier := isOutlier(c)

		switch {
		case accepted && !outlier:
			res.Used = append(res.Used, c)
		case outlier && accepted && source == SourceZone:
			// Pure outlier under the zone source: discarded outright rather
			// than cluttering the reference set.
		default:
			res.Reference = append(res.Reference, c)
		}
	}

	// 5. Backfill from the reference pool, zone source only.
	if source == SourceZone && len(res.Used) < target {
		sortByDistance(res.Reference)
		kept := res.Reference[:0]
		for _, c := range res.Reference {
			if len(res.Used) < target && !isOutlier(c) &&
				c.DistMi <= radius+radiusTolerance &&
				(!l.StrictZoneMatch || c.Zone == l.Zone) {
				res.Used = append(res.Used, c)
				continue
			}
			kept = append(kept, c)
		}
		res.Reference = kept
	}

	// 6. Nearest-first ordering for both sets.
	sortByDistance(res.Used)
	sortByDistance(res.Reference)
	return res
}

// accept applies the source-specific criteria, outlier status aside.
func (s *Selector) accept(source Source, l *models.Listing, c Candidate, inRadius bool) bool {
	if !inRadius {
		return false
	}
	switch source {
	case SourceNewCon:
		return c.YearBuilt >= minNewConYear &&
			zoneMatch(l, c.Zone) &&
			c.SqFt >= minCompSF && c.SqFt <= maxCompSF
	case SourceSubdiv:
		return c.Zone == l.Zone && c.YearBuilt >= minNewConYear
	case SourceZone:
		if l.StrictZoneMatch && c.Zone != l.Zone {
			return false
		}
		return c.SqFt >= minCompSF && c.SqFt <= maxCompSF
	}
	return false
}

// zoneMatch is exact under strict matching, exact-or-adjacent otherwise.
func zoneMatch(l *models.Listing, z models.Zone) bool {
	if z == l.Zone {
		return true
	}
	if l.StrictZoneMatch {
		return false
	}
	for _, adj := range models.AdjacentZones(l.Zone) {
		if z == adj {
			return true
		}
	}
	return false
}

func isOutlier(c Candidate) bool {
	return c.SqFt < outlierMinSF || c.EffectivePPSF() > outlierMaxPPSF
}

func sortByDistance(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].DistMi < cs[j].DistMi })
}
