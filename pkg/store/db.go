// Package store persists computed deal reports: a Postgres pool as the
// primary vault with a file-system fallback for local runs. Raw listing and
// comp data never touches the store; only derived snapshots do.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB opens the shared connection pool from DATABASE_URL. Safe to call
// more than once; only the first call dials. Callers that want file-only
// operation simply skip this and hand a nil pool to NewSnapshotCache.
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}
		cfg, parseErr := pgxpool.ParseConfig(dsn)
		if parseErr != nil {
			err = fmt.Errorf("parse database config: %w", parseErr)
			return
		}
		pool, err = pgxpool.NewWithConfig(ctx, cfg)
	})
	return err
}

// GetPool returns the shared pool, nil when InitDB never succeeded.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close releases the shared pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
