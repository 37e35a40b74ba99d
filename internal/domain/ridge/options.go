package ridge

// Option applies a configuration option to a Solver.
type Option func(*Solver)

// WithFolds sets the number of cross-validation folds. Values below 2 are ignored.
func WithFolds(k int) Option {
	return func(s *Solver) {
		if k >= 2 {
			s.folds = k
		}
	}
}

// WithMethod selects the linear-system backend.
func WithMethod(m Method) Option {
	return func(s *Solver) {
		if m != "" {
			s.method = m
		}
	}
}

// WithDenseMaxColumns sets the widest matrix MethodAuto still solves densely.
func WithDenseMaxColumns(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.denseMaxColumns = n
		}
	}
}

// WithCGTolerance sets the relative residual at which conjugate gradient stops.
func WithCGTolerance(tol float64) Option {
	return func(s *Solver) {
		if tol > 0 {
			s.cgTolerance = tol
		}
	}
}

// WithCGMaxIterations caps conjugate gradient iterations per solve.
// Zero keeps the default of ten times the column count.
func WithCGMaxIterations(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.cgMaxIterations = n
		}
	}
}
