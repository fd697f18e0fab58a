package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// Run is one persisted benchmark run.
type Run struct {
	ID        string
	CreatedAt time.Time

	EnvName    string
	Label      string
	SolverType string

	Steps          int
	ElapsedSeconds float64

	ApplyActSeconds   float64
	PowerflowSeconds  float64
	ExtractObsSeconds float64
}

// Comparison is one persisted two-backend comparison.
type Comparison struct {
	ID        string
	CreatedAt time.Time

	EnvName     string
	LabelA      string
	LabelB      string
	RunA        string
	RunB        string
	SpeedUp     float64
	MaxDiffAOr  float64
	MaxDiffGenP float64
	MaxDiffGenQ float64
}

// RunStore persists benchmark runs and comparisons in a SQLite
// database.
type RunStore struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open creates or opens the run-history database at path, creating
// parent directories as needed.
func Open(path string) (*RunStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	return &RunStore{db: db, path: path}, nil
}

// SaveRun inserts the run, assigning an ID and timestamp when absent,
// and returns the stored run.
func (s *RunStore) SaveRun(ctx context.Context, run Run) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, env_name, label, solver_type,
			steps, elapsed_seconds, apply_act_seconds, powerflow_seconds, extract_obs_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(time.RFC3339Nano), run.EnvName, run.Label, run.SolverType,
		run.Steps, run.ElapsedSeconds, run.ApplyActSeconds, run.PowerflowSeconds, run.ExtractObsSeconds)
	if err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first, at most limit.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, env_name, label, solver_type,
			steps, elapsed_seconds, apply_act_seconds, powerflow_seconds, extract_obs_seconds
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &created, &r.EnvName, &r.Label, &r.SolverType,
			&r.Steps, &r.ElapsedSeconds, &r.ApplyActSeconds, &r.PowerflowSeconds, &r.ExtractObsSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SaveComparison inserts the comparison, assigning an ID and timestamp
// when absent, and returns the stored comparison.
func (s *RunStore) SaveComparison(ctx context.Context, cmp Comparison) (Comparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cmp.ID == "" {
		cmp.ID = uuid.NewString()
	}
	if cmp.CreatedAt.IsZero() {
		cmp.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comparisons (id, created_at, env_name, label_a, label_b, run_a, run_b,
			speed_up, max_diff_aor, max_diff_gen_p, max_diff_gen_q)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cmp.ID, cmp.CreatedAt.Format(time.RFC3339Nano), cmp.EnvName, cmp.LabelA, cmp.LabelB,
		nullable(cmp.RunA), nullable(cmp.RunB),
		cmp.SpeedUp, cmp.MaxDiffAOr, cmp.MaxDiffGenP, cmp.MaxDiffGenQ)
	if err != nil {
		return Comparison{}, fmt.Errorf("failed to insert comparison: %w", err)
	}
	return cmp, nil
}

// ListComparisons returns the most recent comparisons, newest first.
func (s *RunStore) ListComparisons(ctx context.Context, limit int) ([]Comparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, env_name, label_a, label_b,
			COALESCE(run_a, ''), COALESCE(run_b, ''),
			speed_up, max_diff_aor, max_diff_gen_p, max_diff_gen_q
		FROM comparisons ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparisons: %w", err)
	}
	defer rows.Close()

	var cmps []Comparison
	for rows.Next() {
		var c Comparison
		var created string
		if err := rows.Scan(&c.ID, &created, &c.EnvName, &c.LabelA, &c.LabelB,
			&c.RunA, &c.RunB, &c.SpeedUp, &c.MaxDiffAOr, &c.MaxDiffGenP, &c.MaxDiffGenQ); err != nil {
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		cmps = append(cmps, c)
	}
	return cmps, rows.Err()
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
