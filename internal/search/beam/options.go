package beam

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"gosubgroup/domain/core"
	"gosubgroup/domain/dataset"
	"gosubgroup/internal/search/quality"
	"gosubgroup/internal/search/refine"
)

// Options configures one beam search run
type Options struct {
	// BeamWidth is the number of descriptions carried to the next level
	BeamWidth int `json:"beam_width" yaml:"beam_width" validate:"min=1"`
	// Depth is the number of levels, i.e. the longest conjunction
	Depth int `json:"depth" yaml:"depth" validate:"min=1"`
	// ResultCap is the number of descriptions returned
	ResultCap int `json:"result_cap" yaml:"result_cap" validate:"min=1"`
	// Features lists candidate attributes; empty means every non-target column
	Features []string `json:"features" yaml:"features"`
	Target   string   `json:"target" yaml:"target" validate:"required"`
	// NChunks is the number of cut points tried per numeric feature
	NChunks         int             `json:"n_chunks" yaml:"n_chunks" validate:"gte=0"`
	Schedule        refine.Schedule `json:"schedule" yaml:"-"`
	EnsureDiversity bool            `json:"ensure_diversity" yaml:"ensure_diversity"`
	MinCoverage     float64         `json:"min_coverage" yaml:"min_coverage" validate:"gte=0,lte=1"`
	// Quality defaults to WRAcc
	Quality quality.Function `json:"-" yaml:"-"`
}

// DefaultOptions mirrors the defaults of the reference EMM configuration
func DefaultOptions(target string) Options {
	return Options{
		BeamWidth:   10,
		Depth:       2,
		ResultCap:   10,
		Target:      target,
		NChunks:     refine.DefaultChunks,
		Schedule:    refine.Reciprocal,
		MinCoverage: quality.DefaultMinCoverage,
	}
}

var validate = validator.New()

// Validate checks the struct constraints
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidOption, err)
	}
	return nil
}

// resolve fills defaults that depend on the table
func (o Options) resolve(table *dataset.Table) Options {
	if len(o.Features) == 0 {
		o.Features = table.Features(o.Target)
	}
	if o.NChunks == 0 {
		o.NChunks = refine.DefaultChunks
	}
	if o.Quality == nil {
		o.Quality = quality.WRAcc
	}
	return o
}

// Params flattens the options for hashing and persistence
func (o Options) Params() map[string]interface{} {
	fn := "wracc"
	if o.Quality != nil {
		fn = o.Quality.Name()
	}
	return map[string]interface{}{
		"beam_width":       o.BeamWidth,
		"depth":            o.Depth,
		"result_cap":       o.ResultCap,
		"features":         o.Features,
		"target":           o.Target,
		"n_chunks":         o.NChunks,
		"schedule":         o.Schedule.String(),
		"ensure_diversity": o.EnsureDiversity,
		"min_coverage":     o.MinCoverage,
		"quality":          fn,
	}
}
