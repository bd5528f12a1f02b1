package ports

import "gosubgroup/domain/dataset"

// Encoder replaces a set of columns with a fixed number of dense numeric
// columns. Row order and count are preserved; the returned error value is the
// mean squared reconstruction error of the encoding.
type Encoder interface {
	Encode(table *dataset.Table, categorical, numeric []string) (*dataset.Table, float64, error)
}
