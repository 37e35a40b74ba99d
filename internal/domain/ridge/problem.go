package ridge

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/courtside/internal/domain/design"
)

// problem is one weighted regression with its weighted column and target
// means, which define the implicit centering.
type problem struct {
	x     *design.Matrix
	y, w  []float64 // w nil means unit weights
	xMean []float64
	yMean float64
	sumW  float64
}

func newProblem(x *design.Matrix, y, w []float64) (*problem, error) {
	rows, cols := x.Dims()
	p := &problem{x: x, y: y, w: w, xMean: make([]float64, cols)}
	for i := 0; i < rows; i++ {
		wi := p.weight(i)
		p.sumW += wi
		idx, vals := x.Row(i)
		for k, j := range idx {
			p.xMean[j] += wi * vals[k]
		}
	}
	if !(p.sumW > 0) {
		return nil, ErrDegenerateWeights
	}
	floats.Scale(1/p.sumW, p.xMean)
	p.yMean = stat.Mean(y, w)
	return p, nil
}

func (p *problem) weight(i int) float64 {
	if p.w == nil {
		return 1
	}
	return p.w[i]
}

// rhs returns Xcᵀ W yc. Centering X is unnecessary on this side because
// the weighted centered target sums to zero.
func (p *problem) rhs() []float64 {
	rows, cols := p.x.Dims()
	r := make([]float64, rows)
	for i := range r {
		r[i] = p.weight(i) * (p.y[i] - p.yMean)
	}
	b := make([]float64, cols)
	p.x.MulTransVecTo(b, r)
	return b
}

func (p *problem) intercept(coef []float64) float64 {
	return p.yMean - floats.Dot(p.xMean, coef)
}
