package design

import "github.com/okian/courtside/internal/domain/failure"

// Pruned is a design matrix with its all-zero rows removed.
type Pruned struct {
	X *Matrix
	Y []float64
	// Source holds, for every kept row, its row in the unpruned matrix.
	Source []int
}

// Dropped returns how many rows were removed.
func (p *Pruned) Dropped(originalRows int) int {
	return originalRows - len(p.Source)
}

// Prune keeps only rows of x with at least one nonzero entry, preserving
// row order and the pairing of every row with its target value. An all-zero
// row arises when every entity of a possession was filtered out.
func Prune(x *Matrix, y []float64) (*Pruned, error) {
	rows, _ := x.Dims()
	if len(y) != rows {
		return nil, failure.InvalidInput("design matrix has %d rows but target has %d values", rows, len(y))
	}
	keep := make([]int, 0, rows)
	for i := 0; i < rows; i++ {
		if x.RowNNZ(i) > 0 {
			keep = append(keep, i)
		}
	}
	yy := make([]float64, len(keep))
	for k, i := range keep {
		yy[k] = y[i]
	}
	return &Pruned{X: x.SelectRows(keep), Y: yy, Source: keep}, nil
}

// Gather returns v[source[k]] for every k. A nil v stays nil.
func Gather(v []float64, source []int) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(source))
	for k, i := range source {
		out[k] = v[i]
	}
	return out
}
