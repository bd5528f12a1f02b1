package migration

import (
	"context"

	"gosubgroup/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the run store schema. The statements are kept to
// the SQL shared by PostgreSQL and SQLite so one runner serves both.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "2.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create runs table")
	}

	if err := r.createSubgroupsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create subgroups table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			dataset_name TEXT NOT NULL,
			dataset_hash TEXT NOT NULL,
			row_count INTEGER NOT NULL DEFAULT 0,
			target TEXT NOT NULL,
			strategy TEXT NOT NULL,
			options TEXT NOT NULL DEFAULT '{}',
			options_hash TEXT NOT NULL,
			results_hash TEXT NOT NULL DEFAULT '',
			code_version TEXT NOT NULL,
			status TEXT NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			finished_at TEXT
		)
	`)
	return err
}

func (r *MigrationRunner) createSubgroupsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS subgroups (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			rank INTEGER NOT NULL,
			description TEXT NOT NULL,
			quality DOUBLE PRECISION NOT NULL,
			size INTEGER NOT NULL,
			positives INTEGER NOT NULL,
			p_value DOUBLE PRECISION NOT NULL DEFAULT 1,
			permutation_p DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, rank)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_runs_strategy ON runs(strategy)",
		"CREATE INDEX IF NOT EXISTS idx_runs_dataset_hash ON runs(dataset_hash)",
	}

	for _, indexSQL := range indexes {
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return err
		}
	}
	return nil
}
