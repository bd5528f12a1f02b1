package ports

import (
	"context"

	"gosubgroup/domain/dataset"
	"gosubgroup/domain/run"
)

// TableReader loads a dataset from a file
type TableReader interface {
	Read(ctx context.Context, path string) (*dataset.Table, error)
}

// ResultWriter exports the ranked subgroups of a run
type ResultWriter interface {
	Write(path string, r *run.Run) error
}
