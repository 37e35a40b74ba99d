package ridge

import (
	"gonum.org/v1/gonum/floats"
)

// cgSystem solves (XcᵀWXc + αI)β = XcᵀWyc with Jacobi-preconditioned
// conjugate gradient. Xc is never formed: Xc v = Xv - (x̄·v)1.
type cgSystem struct {
	p       *problem
	rhs     []float64
	diag    []float64 // diagonal of XcᵀWXc
	tol     float64
	maxIter int
	rowBuf  []float64
}

func newCGSystem(p *problem, tol float64, maxIter int) *cgSystem {
	rows, n := p.x.Dims()
	diag := make([]float64, n)
	for i := 0; i < rows; i++ {
		wi := p.weight(i)
		idx, vals := p.x.Row(i)
		for k, j := range idx {
			diag[j] += wi * vals[k] * vals[k]
		}
	}
	for j := range diag {
		diag[j] -= p.sumW * p.xMean[j] * p.xMean[j]
		if diag[j] < 0 {
			diag[j] = 0
		}
	}
	if maxIter <= 0 {
		maxIter = max(cgIterationsPerColumn*n, minCGIterations)
	}
	return &cgSystem{
		p:       p,
		rhs:     p.rhs(),
		diag:    diag,
		tol:     tol,
		maxIter: maxIter,
		rowBuf:  make([]float64, rows),
	}
}

// apply sets dst = (XcᵀWXc + αI)v.
func (c *cgSystem) apply(dst, v []float64, alpha float64) {
	c.p.x.MulVecTo(c.rowBuf, v)
	shift := floats.Dot(c.p.xMean, v)
	var sum float64
	for i := range c.rowBuf {
		t := c.p.weight(i) * (c.rowBuf[i] - shift)
		c.rowBuf[i] = t
		sum += t
	}
	c.p.x.MulTransVecTo(dst, c.rowBuf)
	floats.AddScaled(dst, -sum, c.p.xMean)
	floats.AddScaled(dst, alpha, v)
}

func (c *cgSystem) precondition(z, r []float64, alpha float64) {
	for j := range z {
		z[j] = r[j] / (c.diag[j] + alpha)
	}
}

func (c *cgSystem) solve(alpha float64, warm []float64) ([]float64, int, error) {
	n := len(c.rhs)
	x := make([]float64, n)
	bnorm := floats.Norm(c.rhs, 2)
	if bnorm == 0 {
		return x, 0, nil
	}
	if len(warm) == n {
		copy(x, warm)
	}

	r := make([]float64, n)
	c.apply(r, x, alpha)
	floats.SubTo(r, c.rhs, r)
	z := make([]float64, n)
	c.precondition(z, r, alpha)
	dir := make([]float64, n)
	copy(dir, z)
	ad := make([]float64, n)
	rz := floats.Dot(r, z)

	target := c.tol * bnorm
	for it := 0; it < c.maxIter; it++ {
		if floats.Norm(r, 2) <= target {
			return c.finish(x, it)
		}
		c.apply(ad, dir, alpha)
		dad := floats.Dot(dir, ad)
		if !(dad > 0) {
			return nil, it, ErrNotPositiveDefinite
		}
		step := rz / dad
		floats.AddScaled(x, step, dir)
		floats.AddScaled(r, -step, ad)
		c.precondition(z, r, alpha)
		rzNext := floats.Dot(r, z)
		beta := rzNext / rz
		rz = rzNext
		for j := range dir {
			dir[j] = z[j] + beta*dir[j]
		}
	}
	if floats.Norm(r, 2) <= target {
		return c.finish(x, c.maxIter)
	}
	return nil, c.maxIter, ErrNotConverged
}

func (c *cgSystem) finish(x []float64, iterations int) ([]float64, int, error) {
	if !allFinite(x) {
		return nil, iterations, ErrNonFinite
	}
	return x, iterations, nil
}
