package ridge

import "errors"

// Error kinds wrapped by failure.NumericalFitError or returned by ParseMethod.
var (
	ErrUnknownMethod       = errors.New("unknown solver method")
	ErrNotPositiveDefinite = errors.New("penalized normal equations are not positive definite")
	ErrNotConverged        = errors.New("conjugate gradient did not converge")
	ErrNonFinite           = errors.New("solution has non-finite coefficients")
	ErrDegenerateWeights   = errors.New("row weights sum to zero")
)
