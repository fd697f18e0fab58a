// Package store persists benchmark run history in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the run-history store.
const schemaV1 = `
-- One row per benchmark run (denormalized for single-query listing)
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,

    env_name TEXT NOT NULL,
    label TEXT NOT NULL,        -- backend label chosen by the caller
    solver_type TEXT,           -- solver name reported by the backend

    steps INTEGER NOT NULL,
    elapsed_seconds REAL NOT NULL,

    -- Cumulative phase counters, in seconds
    apply_act_seconds REAL NOT NULL DEFAULT 0,
    powerflow_seconds REAL NOT NULL DEFAULT 0,
    extract_obs_seconds REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_env ON runs(env_name);

-- One row per two-backend comparison
CREATE TABLE IF NOT EXISTS comparisons (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,

    env_name TEXT NOT NULL,
    label_a TEXT NOT NULL,
    label_b TEXT NOT NULL,
    run_a TEXT REFERENCES runs(id),
    run_b TEXT REFERENCES runs(id),

    speed_up REAL NOT NULL,
    max_diff_aor REAL NOT NULL,
    max_diff_gen_p REAL NOT NULL,
    max_diff_gen_q REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comparisons_created ON comparisons(created_at);

-- Schema version
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema creates the tables if they do not exist and records the
// schema version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)`,
		SchemaVersion, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}
