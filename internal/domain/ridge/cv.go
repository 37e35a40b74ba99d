package ridge

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/courtside/internal/domain/design"
)

// fold is the half-open row range [lo, hi) held out by one split.
type fold struct{ lo, hi int }

// contiguousFolds splits n rows into k consecutive blocks. The first n%k
// blocks get one extra row.
func contiguousFolds(n, k int) []fold {
	out := make([]fold, 0, k)
	size, extra := n/k, n%k
	lo := 0
	for f := 0; f < k; f++ {
		hi := lo + size
		if f < extra {
			hi++
		}
		out = append(out, fold{lo: lo, hi: hi})
		lo = hi
	}
	return out
}

func (f fold) split(n int) (train, test []int) {
	train = make([]int, 0, n-(f.hi-f.lo))
	test = make([]int, 0, f.hi-f.lo)
	for i := 0; i < n; i++ {
		if i >= f.lo && i < f.hi {
			test = append(test, i)
		} else {
			train = append(train, i)
		}
	}
	return train, test
}

// crossValidate returns the mean held-out R² of every alpha and the number
// of folds used. Each fold's system is built once and reused across the
// grid; conjugate gradient warm-starts from the previous alpha.
func (s *Solver) crossValidate(x *design.Matrix, y, w []float64, method Method) ([]float64, int, error) {
	rows, cols := x.Dims()
	k := min(s.folds, rows)
	scores := make([]float64, len(s.alphas))

	for fi, f := range contiguousFolds(rows, k) {
		train, test := f.split(rows)
		p, err := newProblem(x.SelectRows(train), design.Gather(y, train), design.Gather(w, train))
		if err != nil {
			return nil, 0, fitError(s.alphas[0], len(train), cols, fmt.Errorf("fold %d: %w", fi, err))
		}
		sys := s.system(p, method)

		xt := x.SelectRows(test)
		yt := design.Gather(y, test)
		wt := design.Gather(w, test)
		pred := make([]float64, len(test))

		var warm []float64
		for a, alpha := range s.alphas {
			coef, _, err := sys.solve(alpha, warm)
			if err != nil {
				return nil, 0, fitError(alpha, len(train), cols, fmt.Errorf("fold %d: %w", fi, err))
			}
			warm = coef
			xt.MulVecTo(pred, coef)
			b := p.intercept(coef)
			for i := range pred {
				pred[i] += b
			}
			scores[a] += rSquared(pred, yt, wt)
		}
	}
	for a := range scores {
		scores[a] /= float64(k)
	}
	return scores, k, nil
}

// rSquared is the weighted coefficient of determination. A held-out block
// with constant targets scores 1 when predicted exactly and 0 otherwise.
// A block whose weights are all zero scores 0.
func rSquared(pred, y, w []float64) float64 {
	if w != nil && floats.Sum(w) == 0 {
		return 0
	}
	mean := stat.Mean(y, w)
	var ssTot, ssRes float64
	for i := range y {
		wi := 1.0
		if w != nil {
			wi = w[i]
		}
		d := y[i] - mean
		ssTot += wi * d * d
		e := y[i] - pred[i]
		ssRes += wi * e * e
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(pred, y, w)
}
