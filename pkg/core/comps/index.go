// Package comps implements the comparable-sales matching engine: a fixed-cell
// spatial index over the comp dataset and the selector that picks the comp
// subset driving a listing's exit price, with provenance for audit.
package comps

import (
	"math"

	"dealfinder/pkg/models"
)

// degPerMile approximates degrees of latitude per mile. Paired with a
// cos(lat) correction on longitude this flat-earth model is accurate at the
// sub-50-mile scale the selector operates at; it is not geodesic and must
// not be reused at larger scales.
const degPerMile = 1.0 / 69.0

type cellKey struct {
	Row, Col int
}

// Candidate is a comp annotated with its computed distance from a query
// point. It aliases the indexed record; the record itself is never mutated.
type Candidate struct {
	*models.CompRecord
	DistMi float64
}

// SpatialIndex partitions comps into fixed-size grid cells keyed by
// (floor(lat/cell), floor(lng/cell)). Built once from an immutable dataset;
// safe for concurrent queries because nothing mutates after construction.
type SpatialIndex struct {
	cellDeg float64
	cells   map[cellKey][]*models.CompRecord
	count   int
}

// NewSpatialIndex builds the grid in O(n). cellDeg is the cell edge in
// degrees; 0 falls back to 0.01 (~0.7 miles). Records without coordinates
// are skipped, matching the degrade-to-neutral policy for bad data.
func NewSpatialIndex(comps []models.CompRecord, cellDeg float64) *SpatialIndex {
	if cellDeg <= 0 {
		cellDeg = 0.01
	}
	idx := &SpatialIndex{
		cellDeg: cellDeg,
		cells:   make(map[cellKey][]*models.CompRecord),
	}
	for i := range comps {
		c := &comps[i]
		if c.Lat == 0 || c.Lng == 0 {
			continue
		}
		key := idx.keyFor(c.Lat, c.Lng)
		idx.cells[key] = append(idx.cells[key], c)
		idx.count++
	}
	return idx
}

// Len returns the number of indexed comps.
func (idx *SpatialIndex) Len() int { return idx.count }

func (idx *SpatialIndex) keyFor(lat, lng float64) cellKey {
	return cellKey{
		Row: int(math.Floor(lat / idx.cellDeg)),
		Col: int(math.Floor(lng / idx.cellDeg)),
	}
}

// Query returns every comp within radiusMi of (lat, lng), each annotated
// with its computed distance. The result is a fresh slice in cell-iteration
// order; callers sort as needed.
func (idx *SpatialIndex) Query(lat, lng, radiusMi float64) []Candidate {
	if radiusMi <= 0 || idx.count == 0 {
		return nil
	}

	// Bounding box of cells overlapping the radius.
	delta := radiusMi * degPerMile
	minKey := idx.keyFor(lat-delta, lng-delta)
	maxKey := idx.keyFor(lat+delta, lng+delta)

	cosLat := math.Cos(lat * math.Pi / 180)
	var out []Candidate
	for row := minKey.Row; row <= maxKey.Row; row++ {
		for col := minKey.Col; col <= maxKey.Col; col++ {
			for _, c := range idx.cells[cellKey{row, col}] {
				dLatMi := (c.Lat - lat) / degPerMile
				dLngMi := (c.Lng - lng) / degPerMile * cosLat
				dist := math.Sqrt(dLatMi*dLatMi + dLngMi*dLngMi)
				if dist <= radiusMi {
					out = append(out, Candidate{CompRecord: c, DistMi: dist})
				}
			}
		}
	}
	return out
}
