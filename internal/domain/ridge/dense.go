package ridge

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// denseSystem holds the centered weighted Gram matrix XcᵀWXc once so every
// alpha only adds to the diagonal and refactorizes.
type denseSystem struct {
	n    int
	gram *mat.SymDense
	rhs  *mat.VecDense
}

func newDenseSystem(p *problem) *denseSystem {
	rows, n := p.x.Dims()
	gram := mat.NewSymDense(n, nil)
	raw := gram.RawSymmetric()
	for i := 0; i < rows; i++ {
		wi := p.weight(i)
		if wi == 0 {
			continue
		}
		// row entries are sorted by column, so this stays in the upper triangle
		idx, vals := p.x.Row(i)
		for a, ja := range idx {
			upper := raw.Data[ja*raw.Stride:]
			for b := a; b < len(idx); b++ {
				upper[idx[b]] += wi * vals[a] * vals[b]
			}
		}
	}
	for i := 0; i < n; i++ {
		if p.xMean[i] == 0 {
			continue
		}
		upper := raw.Data[i*raw.Stride:]
		s := p.sumW * p.xMean[i]
		for j := i; j < n; j++ {
			upper[j] -= s * p.xMean[j]
		}
	}
	return &denseSystem{n: n, gram: gram, rhs: mat.NewVecDense(n, p.rhs())}
}

func (d *denseSystem) solve(alpha float64, _ []float64) ([]float64, int, error) {
	a := mat.NewSymDense(d.n, nil)
	a.CopySym(d.gram)
	raw := a.RawSymmetric()
	for i := 0; i < d.n; i++ {
		raw.Data[i*raw.Stride+i] += alpha
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, 0, ErrNotPositiveDefinite
	}
	coef := make([]float64, d.n)
	if err := chol.SolveVecTo(mat.NewVecDense(d.n, coef), d.rhs); err != nil {
		// an ill-conditioned factor still yields a usable solution
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, 0, err
		}
	}
	if !allFinite(coef) {
		return nil, 0, ErrNonFinite
	}
	return coef, 0, nil
}
