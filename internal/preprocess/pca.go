package preprocess

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"gosubgroup/domain/core"
	"gosubgroup/domain/dataset"
)

// OtherCategory collects categories rarer than the encoder's MinSize
const OtherCategory = "Other"

// PCAEncoder compresses categorical and numeric columns into NFeatures
// principal components named cat1..catN. Categorical columns are one-hot
// encoded first, with rare categories lumped into OtherCategory.
type PCAEncoder struct {
	NFeatures int
	MinSize   int
	// KeepOld keeps the encoded columns next to the components
	KeepOld bool
}

// NewPCAEncoder returns an encoder with the usual defaults
func NewPCAEncoder(nFeatures int) *PCAEncoder {
	return &PCAEncoder{NFeatures: nFeatures, MinSize: 1}
}

// Encode implements ports.Encoder
func (e *PCAEncoder) Encode(table *dataset.Table, categorical, numeric []string) (*dataset.Table, float64, error) {
	if e.NFeatures < 1 {
		return nil, 0, core.NewOptionError("n_features", "must be positive")
	}
	if len(categorical)+len(numeric) == 0 {
		return nil, 0, core.NewOptionError("columns", "nothing to encode")
	}

	x, err := e.design(table, categorical, numeric)
	if err != nil {
		return nil, 0, err
	}
	n, d := x.Dims()
	if n < 2 {
		return nil, 0, fmt.Errorf("%w: need at least two rows to encode", core.ErrInvalidTable)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, 0, fmt.Errorf("%w: principal component analysis failed", core.ErrInvalidTable)
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, available := vecs.Dims()
	if e.NFeatures > available {
		return nil, 0, core.NewOptionError("n_features",
			fmt.Sprintf("is %d but only %d components exist", e.NFeatures, available))
	}
	basis := vecs.Slice(0, d, 0, e.NFeatures)

	centered := center(x)
	var scores mat.Dense
	scores.Mul(centered, basis)

	var recon mat.Dense
	recon.Mul(&scores, basis.T())
	mse := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			diff := centered.At(i, j) - recon.At(i, j)
			mse += diff * diff
		}
	}
	mse /= float64(n * d)

	components := make([]*dataset.Column, e.NFeatures)
	for k := 0; k < e.NFeatures; k++ {
		components[k] = dataset.NewFloatColumn(fmt.Sprintf("cat%d", k+1), mat.Col(nil, k, &scores))
	}

	var drop []string
	if !e.KeepOld {
		drop = append(slices.Clone(categorical), numeric...)
	}
	out, err := table.Replace(drop, components...)
	if err != nil {
		return nil, 0, err
	}
	return out, mse, nil
}

// design builds the one-hot plus numeric matrix. Missing numeric cells take
// the column mean; a missing categorical cell has no active indicator.
func (e *PCAEncoder) design(table *dataset.Table, categorical, numeric []string) (*mat.Dense, error) {
	n := table.Len()
	var blocks [][]float64

	for _, name := range categorical {
		col, err := table.Column(name)
		if err != nil {
			return nil, err
		}
		if !col.Kind.IsNominal() {
			return nil, core.NewInputTypeError(name, col.Kind)
		}
		values := lumpRare(col, e.MinSize)
		levels := categories(values)
		for _, level := range levels {
			indicator := make([]float64, n)
			for row, v := range values {
				if v == level {
					indicator[row] = 1
				}
			}
			blocks = append(blocks, indicator)
		}
	}

	for _, name := range numeric {
		col, err := table.Column(name)
		if err != nil {
			return nil, err
		}
		if !col.Kind.IsNumeric() {
			return nil, core.NewInputTypeError(name, col.Kind)
		}
		blocks = append(blocks, imputed(col))
	}

	x := mat.NewDense(n, len(blocks), nil)
	for j, block := range blocks {
		x.SetCol(j, block)
	}
	return x, nil
}

// lumpRare returns the nominal values with rare categories replaced.
// Missing cells come back as "".
func lumpRare(col *dataset.Column, minSize int) []string {
	n := col.Len()
	values := make([]string, n)
	counts := make(map[string]int)
	present := make([]bool, n)
	for row := 0; row < n; row++ {
		if v, ok := col.Nominal(row); ok {
			values[row] = v
			present[row] = true
			counts[v]++
		}
	}
	for row, v := range values {
		if present[row] && counts[v] < minSize {
			values[row] = OtherCategory
		}
	}
	return values
}

// categories lists the distinct non-empty values in sorted order
func categories(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func imputed(col *dataset.Column) []float64 {
	n := col.Len()
	out := make([]float64, n)
	sum, count := 0.0, 0
	for row := 0; row < n; row++ {
		if v, ok := col.Float(row); ok {
			out[row] = v
			sum += v
			count++
		}
	}
	if count == 0 || count == n {
		return out
	}
	mean := sum / float64(count)
	for row := 0; row < n; row++ {
		if col.IsMissing(row) {
			out[row] = mean
		}
	}
	return out
}

// center subtracts column means
func center(x *mat.Dense) *mat.Dense {
	n, d := x.Dims()
	centered := mat.NewDense(n, d, nil)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, x)
		mean := stat.Mean(col, nil)
		for i := range col {
			col[i] -= mean
		}
		centered.SetCol(j, col)
	}
	return centered
}
