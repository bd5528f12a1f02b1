package run

import (
	"fmt"

	"gosubgroup/domain/core"
)

// Status tracks a run through its lifecycle
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// SubgroupRecord is the persisted form of one ranked subgroup
type SubgroupRecord struct {
	Rank        int     `json:"rank" db:"rank"`
	Description string  `json:"description" db:"description"`
	Quality     float64 `json:"quality" db:"quality"`
	Size        int     `json:"size" db:"size"`
	Positives   int     `json:"positives" db:"positives"`
	// PValue is the one-sided binomial significance of the positive count
	PValue       float64 `json:"p_value" db:"p_value"`
	PermutationP float64 `json:"permutation_p,omitempty" db:"permutation_p"`
}

// Line renders the record for results hashing
func (s SubgroupRecord) Line() string {
	return fmt.Sprintf("%d|%s|%.12g|%d|%d", s.Rank, s.Description, s.Quality, s.Size, s.Positives)
}

// Run is a finished or in-flight discovery
type Run struct {
	Manifest   Manifest         `json:"manifest"`
	Status     Status           `json:"status"`
	Subgroups  []SubgroupRecord `json:"subgroups"`
	Error      string           `json:"error,omitempty"`
	FinishedAt *core.Timestamp  `json:"finished_at,omitempty"`
}

// ID returns the run id
func (r *Run) ID() core.RunID { return r.Manifest.RunID }

// Complete records the ranked subgroups and seals the manifest
func (r *Run) Complete(subgroups []SubgroupRecord) {
	r.Subgroups = subgroups
	r.Manifest.Seal(subgroups)
	r.Status = StatusCompleted
	now := core.Now()
	r.FinishedAt = &now
}

// Fail marks the run failed with the cause
func (r *Run) Fail(err error) {
	r.Status = StatusFailed
	r.Error = err.Error()
	now := core.Now()
	r.FinishedAt = &now
}

// Summary is the list view of a run
type Summary struct {
	RunID       core.RunID     `json:"run_id" db:"id"`
	DatasetName string         `json:"dataset_name" db:"dataset_name"`
	Strategy    string         `json:"strategy" db:"strategy"`
	Status      Status         `json:"status" db:"status"`
	Subgroups   int            `json:"subgroups" db:"subgroups"`
	CreatedAt   core.Timestamp `json:"created_at" db:"created_at"`
}
