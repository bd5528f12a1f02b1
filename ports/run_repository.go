package ports

import (
	"context"

	"gosubgroup/domain/core"
	"gosubgroup/domain/run"
)

// RunRepository persists discovery runs and their ranked subgroups
type RunRepository interface {
	Save(ctx context.Context, r *run.Run) error
	Get(ctx context.Context, id core.RunID) (*run.Run, error)
	List(ctx context.Context, filters RunFilters) ([]run.Summary, error)
	Delete(ctx context.Context, id core.RunID) error
}

// RunFilters for querying runs
type RunFilters struct {
	Status   *run.Status
	Strategy string
	Limit    int
	Offset   int
}
