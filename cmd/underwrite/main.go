package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"dealfinder/pkg/core/assumption"
	"dealfinder/pkg/core/comps"
	"dealfinder/pkg/core/dataset"
	"dealfinder/pkg/core/deal"
)

func main() {
	listingsPath := flag.String("listings", "data/listings.json", "listing dataset (JSON or JS export)")
	compsPath := flag.String("comps", "data/comps.json", "comp dataset (JSON or JS export)")
	assumptionsPath := flag.String("assumptions", "", "YAML assumption overrides")
	outPath := flag.String("out", "deals_out.json", "output report file")
	withGrids := flag.Bool("grids", false, "include sensitivity grids in each report")
	flag.Parse()

	godotenv.Load()

	cfg := assumption.DefaultConfig()
	if *assumptionsPath != "" {
		loaded, err := assumption.LoadFile(*assumptionsPath)
		if err != nil {
			fmt.Printf("[FATAL] %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	fmt.Printf("[ASSUMPTIONS] hash %s\n", cfg.Hash())

	listings, err := dataset.LoadListings(*listingsPath)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	records, err := dataset.LoadComps(*compsPath)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}

	assumptionCtx := assumption.NewContext(cfg)
	idx := comps.NewSpatialIndex(records, cfg.GridCellDeg)
	builder := deal.NewBuilder(idx, assumptionCtx)
	fmt.Printf("[STEP 1] Loaded %d listings, indexed %d comps\n", len(listings), idx.Len())

	// Underwrite every listing and accumulate provenance statistics.
	reports := make([]*deal.Report, 0, len(listings))
	bySource := map[comps.Source]int{}
	var radiusSum, usedSum float64
	var matched int
	for i := range listings {
		rep := builder.Build(&listings[i], *withGrids)
		reports = append(reports, rep)
		bySource[rep.Match.Source]++
		if rep.Match.Source != comps.SourceNone {
			matched++
			radiusSum += rep.Match.SearchRadiusMi
			usedSum += float64(len(rep.Match.Used))
		}
	}

	fmt.Printf("[STEP 2] Underwrote %d listings\n", len(reports))
	fmt.Printf("  sources: subdiv=%d newcon=%d zone=%d none=%d\n",
		bySource[comps.SourceSubdiv], bySource[comps.SourceNewCon],
		bySource[comps.SourceZone], bySource[comps.SourceNone])
	if matched > 0 {
		fmt.Printf("  avg radius %.2f mi, avg sample %.1f comps\n",
			radiusSum/float64(matched), usedSum/float64(matched))
	}

	out, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		fmt.Printf("[FATAL] marshal reports: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, out, 0644); err != nil {
		fmt.Printf("[FATAL] write %s: %v\n", *outPath, err)
		os.Exit(1)
	}
	fmt.Printf("[STEP 3] Wrote %s\n", *outPath)
}
