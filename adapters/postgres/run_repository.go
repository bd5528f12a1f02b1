package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gosubgroup/domain/core"
	"gosubgroup/domain/run"
	"gosubgroup/ports"
)

// RunRepositoryImpl implements ports.RunRepository on any sqlx database
// whose driver has a registered bind type.
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// runRow mirrors the runs table
type runRow struct {
	ID           string         `db:"id"`
	DatasetName  string         `db:"dataset_name"`
	DatasetHash  string         `db:"dataset_hash"`
	RowCount     int            `db:"row_count"`
	Target       string         `db:"target"`
	Strategy     string         `db:"strategy"`
	Options      string         `db:"options"`
	OptionsHash  string         `db:"options_hash"`
	ResultsHash  string         `db:"results_hash"`
	CodeVersion  string         `db:"code_version"`
	Status       string         `db:"status"`
	ErrorMessage string         `db:"error_message"`
	CreatedAt    string         `db:"created_at"`
	FinishedAt   sql.NullString `db:"finished_at"`
}

// timeLayout has a fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t core.Timestamp) string {
	return t.Time().UTC().Format(timeLayout)
}

func parseTime(s string) (core.Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return core.Timestamp{}, err
	}
	return core.NewTimestamp(t), nil
}

// Save upserts the run and replaces its subgroups in one transaction
func (r *RunRepositoryImpl) Save(ctx context.Context, rn *run.Run) error {
	options, err := json.Marshal(rn.Manifest.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	var finished sql.NullString
	if rn.FinishedAt != nil {
		finished = sql.NullString{String: formatTime(*rn.FinishedAt), Valid: true}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	m := rn.Manifest
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO runs (id, dataset_name, dataset_hash, row_count, target, strategy, options, options_hash,
			results_hash, code_version, status, error_message, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			results_hash = excluded.results_hash,
			status = excluded.status,
			error_message = excluded.error_message,
			finished_at = excluded.finished_at
	`), m.RunID.String(), m.DatasetName, m.DatasetHash.String(), m.Rows, m.Target, m.Strategy, string(options),
		m.OptionsHash.String(), m.ResultsHash.String(), m.CodeVersion, string(rn.Status), rn.Error,
		formatTime(m.CreatedAt), finished)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM subgroups WHERE run_id = ?`), m.RunID.String()); err != nil {
		return fmt.Errorf("failed to clear subgroups: %w", err)
	}
	for _, s := range rn.Subgroups {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO subgroups (run_id, rank, description, quality, size, positives, p_value, permutation_p)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`), m.RunID.String(), s.Rank, s.Description, s.Quality, s.Size, s.Positives, s.PValue, s.PermutationP)
		if err != nil {
			return fmt.Errorf("failed to save subgroup %d: %w", s.Rank, err)
		}
	}

	return tx.Commit()
}

// Get loads a run with its subgroups ordered by rank
func (r *RunRepositoryImpl) Get(ctx context.Context, id core.RunID) (*run.Run, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT id, dataset_name, dataset_hash, row_count, target, strategy, options, options_hash,
			results_hash, code_version, status, error_message, created_at, finished_at
		FROM runs
		WHERE id = ?
	`), id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rn, err := row.toRun()
	if err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &rn.Subgroups, r.db.Rebind(`
		SELECT rank, description, quality, size, positives, p_value, permutation_p
		FROM subgroups
		WHERE run_id = ?
		ORDER BY rank
	`), id.String()); err != nil {
		return nil, fmt.Errorf("failed to load subgroups: %w", err)
	}
	return rn, nil
}

func (row runRow) toRun() (*run.Run, error) {
	created, err := parseTime(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("run %s has a malformed created_at: %w", row.ID, err)
	}
	var options map[string]interface{}
	if err := json.Unmarshal([]byte(row.Options), &options); err != nil {
		return nil, fmt.Errorf("run %s has malformed options: %w", row.ID, err)
	}

	rn := &run.Run{
		Manifest: run.Manifest{
			RunID:       core.RunID(row.ID),
			DatasetName: row.DatasetName,
			DatasetHash: core.DatasetHash(row.DatasetHash),
			Rows:        row.RowCount,
			Target:      row.Target,
			Strategy:    row.Strategy,
			Options:     options,
			OptionsHash: core.OptionsHash(row.OptionsHash),
			ResultsHash: core.ResultsHash(row.ResultsHash),
			CodeVersion: row.CodeVersion,
			CreatedAt:   created,
		},
		Status:    run.Status(row.Status),
		Error:     row.ErrorMessage,
		Subgroups: []run.SubgroupRecord{},
	}
	if row.FinishedAt.Valid {
		finished, err := parseTime(row.FinishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("run %s has a malformed finished_at: %w", row.ID, err)
		}
		rn.FinishedAt = &finished
	}
	return rn, nil
}

// List returns run summaries, newest first
func (r *RunRepositoryImpl) List(ctx context.Context, filters ports.RunFilters) ([]run.Summary, error) {
	query := `
		SELECT r.id, r.dataset_name, r.strategy, r.status, r.created_at,
			(SELECT COUNT(*) FROM subgroups s WHERE s.run_id = r.id) AS subgroups
		FROM runs r
		WHERE 1 = 1`
	var args []interface{}
	if filters.Status != nil {
		query += " AND r.status = ?"
		args = append(args, string(*filters.Status))
	}
	if filters.Strategy != "" {
		query += " AND r.strategy = ?"
		args = append(args, filters.Strategy)
	}
	query += " ORDER BY r.created_at DESC, r.id"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filters.Offset)
		}
	}

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []run.Summary{}
	for rows.Next() {
		var (
			s         run.Summary
			id        string
			status    string
			createdAt string
		)
		if err := rows.Scan(&id, &s.DatasetName, &s.Strategy, &status, &createdAt, &s.Subgroups); err != nil {
			return nil, err
		}
		s.RunID = core.RunID(id)
		s.Status = run.Status(status)
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Delete removes a run and its subgroups
func (r *RunRepositoryImpl) Delete(ctx context.Context, id core.RunID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM subgroups WHERE run_id = ?`), id.String()); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM runs WHERE id = ?`), id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w %s", core.ErrRunNotFound, id)
	}
	return tx.Commit()
}
