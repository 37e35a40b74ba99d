// Package ridge fits an L2-penalized linear regression with an unpenalized
// intercept and picks the penalty from a grid by contiguous k-fold
// cross-validation.
//
// The loss minimized for a given alpha is
//
//	Σ w_i (y_i - b - x_i·β)² + alpha ||β||²
//
// with unit weights when none are given. The intercept b is removed by
// weighted centering, so collinear or rank-deficient columns still give a
// unique finite β for any alpha > 0.
package ridge

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/okian/courtside/internal/domain/design"
	"github.com/okian/courtside/internal/domain/failure"
)

// Default solver configuration.
const (
	defaultFolds           = 5
	defaultDenseMaxColumns = 4000
	defaultCGTolerance     = 1e-8
	cgIterationsPerColumn  = 10
	minCGIterations        = 100
)

// Method selects how the penalized normal equations are solved.
type Method string

// Solver backends.
const (
	// MethodAuto is MethodDense up to the dense column limit, MethodCG beyond it.
	MethodAuto Method = "auto"
	// MethodDense forms the Gram matrix and factorizes it with Cholesky.
	MethodDense Method = "dense"
	// MethodCG runs preconditioned conjugate gradient on the sparse matrix.
	MethodCG Method = "cg"
)

// ParseMethod parses a backend name, case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodAuto, MethodDense, MethodCG:
		return m, nil
	case "":
		return MethodAuto, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Model is a fitted regression.
type Model struct {
	Coef      []float64 // one per design column
	Intercept float64
	Alpha     float64 // chosen penalty
	Alphas    []float64
	// CVScores holds the mean held-out R² of every alpha in Alphas.
	// It is nil when the grid had a single alpha and no validation ran.
	CVScores   []float64
	Folds      int
	Method     Method // backend actually used
	Iterations int    // conjugate gradient iterations of the final fit
}

// Predict returns the fitted values for the rows of x.
func (m *Model) Predict(x *design.Matrix) []float64 {
	rows, _ := x.Dims()
	out := make([]float64, rows)
	x.MulVecTo(out, m.Coef)
	for i := range out {
		out[i] += m.Intercept
	}
	return out
}

// Solver fits ridge models over a fixed alpha grid. A Solver holds no
// per-fit state and may be shared by concurrent runs.
type Solver struct {
	alphas          []float64
	folds           int
	method          Method
	denseMaxColumns int
	cgTolerance     float64
	cgMaxIterations int
}

// NewSolver returns a solver over the given alpha grid.
func NewSolver(alphas []float64, opts ...Option) *Solver {
	s := &Solver{
		alphas:          slices.Clone(alphas),
		folds:           defaultFolds,
		method:          MethodAuto,
		denseMaxColumns: defaultDenseMaxColumns,
		cgTolerance:     defaultCGTolerance,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Alphas returns a copy of the alpha grid.
func (s *Solver) Alphas() []float64 { return slices.Clone(s.alphas) }

// Fit selects alpha by cross-validation and refits on every row with it.
// w may be nil for unit weights.
//
// Folds are contiguous blocks of rows in their given order; the first
// rows%k folds hold one extra row. The alpha with the highest mean
// held-out R² wins, the earliest in the grid on ties.
func (s *Solver) Fit(x *design.Matrix, y, w []float64) (*Model, error) {
	if err := s.validate(x, y, w); err != nil {
		return nil, err
	}
	rows, cols := x.Dims()
	method := s.methodFor(cols)

	m := &Model{
		Alpha:  s.alphas[0],
		Alphas: slices.Clone(s.alphas),
		Method: method,
	}
	if len(s.alphas) > 1 {
		scores, folds, err := s.crossValidate(x, y, w, method)
		if err != nil {
			return nil, err
		}
		best := 0
		for i := 1; i < len(scores); i++ {
			if scores[i] > scores[best] {
				best = i
			}
		}
		m.Alpha = s.alphas[best]
		m.CVScores = scores
		m.Folds = folds
	}

	p, err := newProblem(x, y, w)
	if err != nil {
		return nil, fitError(m.Alpha, rows, cols, err)
	}
	coef, iters, err := s.system(p, method).solve(m.Alpha, nil)
	if err != nil {
		return nil, fitError(m.Alpha, rows, cols, err)
	}
	m.Coef = coef
	m.Intercept = p.intercept(coef)
	m.Iterations = iters
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return nil, fitError(m.Alpha, rows, cols, ErrNonFinite)
	}
	return m, nil
}

func (s *Solver) validate(x *design.Matrix, y, w []float64) error {
	if x == nil {
		return failure.InvalidInput("no design matrix")
	}
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return failure.InvalidInput("empty design matrix (%d rows, %d columns)", rows, cols)
	}
	if len(y) != rows {
		return failure.InvalidInput("design matrix has %d rows but target has %d values", rows, len(y))
	}
	for i, v := range y {
		if !finite(v) {
			return failure.InvalidInput("target value %g at row %d is not finite", v, i)
		}
	}
	if len(s.alphas) == 0 {
		return failure.InvalidInput("empty alpha grid")
	}
	for _, a := range s.alphas {
		if !(a > 0) || math.IsInf(a, 0) {
			return failure.InvalidInput("alpha %g is not a positive finite number", a)
		}
	}
	if w != nil {
		if len(w) != rows {
			return failure.InvalidInput("design matrix has %d rows but %d weights were given", rows, len(w))
		}
		var sum float64
		for i, v := range w {
			if !(v >= 0) || math.IsInf(v, 0) {
				return failure.InvalidInput("weight %g at row %d is not a non-negative finite number", v, i)
			}
			sum += v
		}
		if sum == 0 {
			return failure.InvalidInput("row weights sum to zero")
		}
	}
	if len(s.alphas) > 1 && rows < 2 {
		return failure.InvalidInput("cross-validation needs at least 2 rows, got %d", rows)
	}
	switch s.method {
	case MethodAuto, MethodDense, MethodCG:
	default:
		return failure.InvalidInput("unknown solver method %q", s.method)
	}
	return nil
}

func (s *Solver) methodFor(cols int) Method {
	if s.method != MethodAuto {
		return s.method
	}
	if cols <= s.denseMaxColumns {
		return MethodDense
	}
	return MethodCG
}

// system solves the centered penalized normal equations of one problem for
// any alpha. warm is an optional starting point.
type system interface {
	solve(alpha float64, warm []float64) (coef []float64, iterations int, err error)
}

func (s *Solver) system(p *problem, method Method) system {
	if method == MethodCG {
		return newCGSystem(p, s.cgTolerance, s.cgMaxIterations)
	}
	return newDenseSystem(p)
}

func fitError(alpha float64, rows, cols int, err error) error {
	return &failure.NumericalFitError{Alpha: alpha, Rows: rows, Cols: cols, Err: err}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(vs []float64) bool {
	for _, v := range vs {
		if !finite(v) {
			return false
		}
	}
	return true
}
