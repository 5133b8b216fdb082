package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealfinder/pkg/core/deal"
)

// SnapshotCache stores computed deal reports keyed by coordinate plus
// assumption hash, so a report is only ever reused against the exact
// assumption set that produced it. DB is primary; file system is the
// fallback when no pool is configured.
type SnapshotCache struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewSnapshotCache builds a cache. A nil pool with an empty dir defaults to
// a local .cache directory.
func NewSnapshotCache(pool *pgxpool.Pool, dir string) *SnapshotCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "deals")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] snapshot cache dir: %v\n", err)
		}
	}
	return &SnapshotCache{pool: pool, fileDir: dir}
}

// Snapshot is the persisted envelope around a report.
type Snapshot struct {
	ID             string       `json:"id"`
	CoordKey       string       `json:"coord_key"`
	Address        string       `json:"address"`
	AssumptionHash string       `json:"assumption_hash"`
	Report         *deal.Report `json:"report"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Get retrieves a cached report for a coordinate under a specific
// assumption hash. A miss returns (nil, nil).
func (c *SnapshotCache) Get(ctx context.Context, coordKey, assumptionHash string) (*deal.Report, error) {
	if c.pool != nil {
		query := `
			SELECT report
			FROM deal_snapshots
			WHERE coord_key = $1 AND assumption_hash = $2
			ORDER BY created_at DESC
			LIMIT 1
		`
		var reportJSON []byte
		err := c.pool.QueryRow(ctx, query, coordKey, assumptionHash).Scan(&reportJSON)
		if err != nil {
			return nil, nil // miss
		}
		var rep deal.Report
		if err := json.Unmarshal(reportJSON, &rep); err != nil {
			return nil, fmt.Errorf("unmarshal cached report: %w", err)
		}
		return &rep, nil
	}

	if c.fileDir != "" {
		return c.loadFromFile(c.snapshotPath(coordKey, assumptionHash))
	}
	return nil, nil
}

// Save persists a report under its coordinate and assumption hash. On
// conflict the newest report wins.
func (c *SnapshotCache) Save(ctx context.Context, rep *deal.Report, assumptionHash string) error {
	reportJSON, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if c.pool != nil {
		query := `
			INSERT INTO deal_snapshots (id, coord_key, address, assumption_hash, report)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (coord_key, assumption_hash)
			DO UPDATE SET
				report = EXCLUDED.report,
				address = EXCLUDED.address,
				created_at = NOW()
		`
		_, err = c.pool.Exec(ctx, query,
			uuid.NewString(), rep.CoordKey, rep.Address, assumptionHash, reportJSON)
		if err != nil {
			return fmt.Errorf("save snapshot to db: %w", err)
		}
		return nil
	}

	if c.fileDir != "" {
		snap := Snapshot{
			ID:             uuid.NewString(),
			CoordKey:       rep.CoordKey,
			Address:        rep.Address,
			AssumptionHash: assumptionHash,
			Report:         rep,
			CreatedAt:      time.Now(),
		}
		fileBytes, _ := json.MarshalIndent(snap, "", "  ")
		path := c.snapshotPath(rep.CoordKey, assumptionHash)
		if err := os.WriteFile(path, fileBytes, 0644); err != nil {
			return fmt.Errorf("save snapshot to file: %w", err)
		}
	}
	return nil
}

// Exists reports whether a snapshot is already cached.
func (c *SnapshotCache) Exists(ctx context.Context, coordKey, assumptionHash string) bool {
	if c.pool != nil {
		query := `SELECT 1 FROM deal_snapshots WHERE coord_key = $1 AND assumption_hash = $2 LIMIT 1`
		var one int
		if err := c.pool.QueryRow(ctx, query, coordKey, assumptionHash).Scan(&one); err == nil {
			return true
		}
	}
	if c.fileDir != "" {
		if _, err := os.Stat(c.snapshotPath(coordKey, assumptionHash)); err == nil {
			return true
		}
	}
	return false
}

func (c *SnapshotCache) snapshotPath(coordKey, assumptionHash string) string {
	safe := strings.NewReplacer(",", "_", ".", "p", "-", "m").Replace(coordKey)
	return filepath.Join(c.fileDir, safe+"_"+assumptionHash+".json")
}

func (c *SnapshotCache) loadFromFile(path string) (*deal.Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil // miss
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err == nil && snap.Report != nil {
		return snap.Report, nil
	}
	var rep deal.Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}
