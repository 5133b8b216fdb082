package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"dealfinder/pkg/api/underwrite"
	"dealfinder/pkg/core/assumption"
	"dealfinder/pkg/core/comps"
	"dealfinder/pkg/core/dataset"
	"dealfinder/pkg/core/deal"
	"dealfinder/pkg/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Assumption set: YAML overrides on top of defaults.
	cfgPath := os.Getenv("ASSUMPTIONS_FILE")
	if cfgPath == "" {
		cfgPath = "config/assumptions.yaml"
	}
	cfg, err := assumption.LoadFile(cfgPath)
	if err != nil {
		fmt.Printf("[WARNING] %v\n", err)
		fmt.Println("  Falling back to default assumptions")
		cfg = assumption.DefaultConfig()
	} else {
		fmt.Printf("[ASSUMPTIONS] Loaded %s (hash %s)\n", cfgPath, cfg.Hash())
	}
	assumptionCtx := assumption.NewContext(cfg)

	// Comp dataset and spatial index.
	compsPath := os.Getenv("COMPS_FILE")
	if compsPath == "" {
		compsPath = "data/comps.json"
	}
	records, err := dataset.LoadComps(compsPath)
	if err != nil {
		fmt.Printf("[WARNING] %v\n", err)
		fmt.Println("  Starting with an empty comp index; matches will be source=none")
	}
	idx := comps.NewSpatialIndex(records, cfg.GridCellDeg)
	fmt.Printf("[COMPS] Indexed %d comps from %s\n", idx.Len(), compsPath)

	builder := deal.NewBuilder(idx, assumptionCtx)

	// Snapshot store: DB primary when DATABASE_URL is set, file fallback
	// otherwise.
	var snapshots *store.SnapshotCache
	if err := store.InitDB(context.Background()); err != nil {
		fmt.Printf("[WARNING] DB unavailable (%v), using file snapshot cache\n", err)
		snapshots = store.NewSnapshotCache(nil, "")
	} else {
		snapshots = store.NewSnapshotCache(store.GetPool(), "")
		defer store.Close()
	}

	underwrite.InitHandler(builder, assumptionCtx, snapshots)
	http.HandleFunc("/api/underwrite", underwrite.HandleUnderwrite)
	http.HandleFunc("/api/assumptions", underwrite.HandleAssumptions)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/underwrite")
	fmt.Println("  - GET/POST /api/assumptions")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
