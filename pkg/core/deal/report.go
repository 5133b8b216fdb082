// Package deal composes the calculation chain for one listing into a single
// report: comp match, exit price, pro forma, capital stack, distribution
// waterfall, build-to-rent alternative, and sensitivity grids.
package deal

import (
	"dealfinder/pkg/core/assumption"
	"dealfinder/pkg/core/comps"
	"dealfinder/pkg/core/underwriting"
	"dealfinder/pkg/models"
)

// Report is the full underwriting output for one listing, plain data.
type Report struct {
	Address  string `json:"address,omitempty"`
	CoordKey string `json:"coordKey"`

	Match     comps.MatchResult               `json:"match"`
	ExitPSF   float64                         `json:"exitPsf"`
	ProForma  *underwriting.ProFormaResult    `json:"proForma"`
	Stack     underwriting.CapitalStackResult `json:"stack"`
	Waterfall *underwriting.WaterfallResult   `json:"waterfall"`
	BTR       *underwriting.BTRResult         `json:"btr"`
	Grids     []underwriting.SensitivityGrid  `json:"grids,omitempty"`
}

// Builder runs the chain against a shared comp index, engine, and live
// assumption set.
type Builder struct {
	selector *comps.Selector
	engine   *underwriting.Engine
	ctx      *assumption.Context
}

// NewBuilder wires a builder. The engine registers its own invalidation
// with the context; the builder holds no state of its own.
func NewBuilder(idx *comps.SpatialIndex, ctx *assumption.Context) *Builder {
	return &Builder{
		selector: comps.NewSelector(idx, ctx),
		engine:   underwriting.NewEngine(ctx),
		ctx:      ctx,
	}
}

// Engine exposes the memoizing engine, mainly for cache diagnostics.
func (b *Builder) Engine() *underwriting.Engine { return b.engine }

// exitPrice maps the matched source back to the listing's corresponding
// raw signal. The aggregation of the used comp set into these signals is
// upstream policy; a no-match listing underwrites at zero and surfaces a
// negative margin rather than an error.
func exitPrice(l *models.Listing, source comps.Source) float64 {
	switch source {
	case comps.SourceSubdiv:
		return l.SubdivPSF
	case comps.SourceNewCon:
		return l.NewConPSF
	case comps.SourceZone:
		return l.ZonePSF
	}
	return 0
}

// Build runs the full chain for one listing. withGrids controls whether the
// sensitivity grids are computed; batch callers usually skip them.
func (b *Builder) Build(l *models.Listing, withGrids bool) *Report {
	match := b.selector.Select(l)
	exitPSF := exitPrice(l, match.Source)

	cfg := b.ctx.Config()
	pf := b.engine.Underwrite(l, exitPSF)
	stack := underwriting.SizeCapitalStack(pf, cfg)

	rep := &Report{
		Address:   l.Address,
		CoordKey:  l.CoordKey(),
		Match:     match,
		ExitPSF:   exitPSF,
		ProForma:  pf,
		Stack:     stack,
		Waterfall: underwriting.RunWaterfall(pf, stack, cfg),
		BTR:       b.engine.AnalyzeBTR(l, exitPSF),
	}
	if withGrids {
		rep.Grids = underwriting.GenerateGrids(pf, cfg)
	}
	return rep
}
