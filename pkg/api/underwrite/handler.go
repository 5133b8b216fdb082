package underwrite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"dealfinder/pkg/core/assumption"
	"dealfinder/pkg/core/deal"
	"dealfinder/pkg/models"
	"dealfinder/pkg/store"
)

var builder *deal.Builder
var assumptionCtx *assumption.Context
var snapshots *store.SnapshotCache

// InitHandler wires the shared builder and assumption context. A nil
// snapshot cache disables persistence; reports are still computed fresh.
func InitHandler(b *deal.Builder, ctx *assumption.Context, snaps *store.SnapshotCache) {
	builder = b
	assumptionCtx = ctx
	snapshots = snaps
}

type UnderwriteRequest struct {
	Listing   models.Listing `json:"listing"`
	WithGrids bool           `json:"withGrids"`
	NoCache   bool           `json:"noCache"`
}

func HandleUnderwrite(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req UnderwriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Listing.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash := assumptionCtx.Config().Hash()
	coordKey := req.Listing.CoordKey()
	ctx := context.Background()

	// 1. Snapshot cache, keyed by coordinate + assumption hash.
	if snapshots != nil && !req.NoCache {
		if cached, err := snapshots.Get(ctx, coordKey, hash); err == nil && cached != nil {
			fmt.Printf("[UNDERWRITE] CACHE HIT %s\n", coordKey)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(cached)
			return
		}
	}

	// 2. Run the full chain.
	fmt.Printf("[UNDERWRITE] Request: %s (%s)\n", req.Listing.Address, coordKey)
	rep := builder.Build(&req.Listing, req.WithGrids)
	fmt.Printf("[UNDERWRITE] %s: %d units, source=%s, profit=%.0f\n",
		coordKey, rep.ProForma.Units, rep.Match.Source, rep.ProForma.Profit)

	if snapshots != nil {
		if err := snapshots.Save(ctx, rep, hash); err != nil {
			fmt.Printf("[WARNING] snapshot save failed: %v\n", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rep)
}

// HandleAssumptions returns the live assumption set on GET and replaces it
// on POST. A replace clears every memoized result before responding.
func HandleAssumptions(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(assumptionCtx.Config())
	case http.MethodPost:
		// Decode over the defaults so partial bodies only override what
		// they name, mirroring the YAML loader.
		cfg := assumption.DefaultConfig()
		if err := json.NewDecoder(r.Body).Decode(cfg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		assumptionCtx.Replace(cfg)
		fmt.Printf("[ASSUMPTIONS] Replaced, hash=%s, caches cleared\n", cfg.Hash())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cfg)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
