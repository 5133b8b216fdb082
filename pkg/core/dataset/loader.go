// Package dataset materializes the in-memory Listing and CompRecord
// collections from the export formats the upstream acquisition stage
// produces: plain JSON arrays, or JS module exports of the form
// `const LISTINGS = [...];`. Parsing is tolerant (hjson) because the JS
// exports carry trailing commas and unquoted keys; record validation is
// strict because bad identity fields poison everything downstream.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/hjson/hjson-go/v4"

	"dealfinder/pkg/models"
)

// jsExportRe strips the assignment prefix of a JS module export, leaving
// the bare array literal.
var jsExportRe = regexp.MustCompile(`(?s)^\s*(?:export\s+)?(?:const|var|let)\s+\w+\s*=\s*(.*?);?\s*$`)

func stripJSWrapper(data []byte) []byte {
	if m := jsExportRe.FindSubmatch(data); m != nil {
		return m[1]
	}
	return data
}

// decode tolerant-parses raw bytes into out via an hjson pass and a JSON
// round-trip, so both strict JSON and JS-flavored exports land in the same
// typed slice.
func decode(data []byte, out interface{}) error {
	var generic interface{}
	if err := hjson.Unmarshal(stripJSWrapper(data), &generic); err != nil {
		return fmt.Errorf("parse dataset: %w", err)
	}
	normalized, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("normalize dataset: %w", err)
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return fmt.Errorf("decode dataset: %w", err)
	}
	return nil
}

// LoadListings reads a listing dataset from a JSON or JS export file.
// Fails fast on the first record with malformed identity.
func LoadListings(path string) ([]models.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read listings: %w", err)
	}
	return ParseListings(data)
}

// ParseListings decodes and validates a listing dataset already in memory.
func ParseListings(data []byte) ([]models.Listing, error) {
	var listings []models.Listing
	if err := decode(data, &listings); err != nil {
		return nil, err
	}
	for i := range listings {
		if err := listings[i].Validate(); err != nil {
			return nil, fmt.Errorf("listing %d: %w", i, err)
		}
	}
	return listings, nil
}

// LoadComps reads a comp dataset from a JSON or JS export file and
// classifies tiers for records the upstream stage left unclassified.
func LoadComps(path string) ([]models.CompRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read comps: %w", err)
	}
	return ParseComps(data)
}

// ParseComps decodes, validates, and tier-classifies a comp dataset.
func ParseComps(data []byte) ([]models.CompRecord, error) {
	var comps []models.CompRecord
	if err := decode(data, &comps); err != nil {
		return nil, err
	}
	for i := range comps {
		if err := comps[i].Validate(); err != nil {
			return nil, fmt.Errorf("comp %d: %w", i, err)
		}
	}
	ClassifyTiers(comps)
	return comps, nil
}

// Tier classification parameters. A comp is new-or-remodeled when it was
// built recently, or when its $/SF clears the dataset median by enough to
// signal a full remodel.
const (
	tierNewYear       = 2021
	tierRemodelFactor = 1.25
)

// ClassifyTiers assigns a quality tier to every record that arrived without
// one. Records already tiered upstream are left alone.
func ClassifyTiers(comps []models.CompRecord) {
	median := medianPPSF(comps)
	for i := range comps {
		c := &comps[i]
		if c.Tier != 0 {
			continue
		}
		switch {
		case c.YearBuilt >= tierNewYear:
			c.Tier = models.TierNewOrRemodeled
		case median > 0 && c.EffectivePPSF() >= median*tierRemodelFactor:
			c.Tier = models.TierNewOrRemodeled
		default:
			c.Tier = models.TierExisting
		}
	}
}

func medianPPSF(comps []models.CompRecord) float64 {
	vals := make([]float64, 0, len(comps))
	for i := range comps {
		if p := comps[i].EffectivePPSF(); p > 0 {
			vals = append(vals, p)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}
