package source

import "errors"

// Sentinel kinds for malformed source data. They reach callers wrapped in
// failure.DataAcquisitionError.
var (
	ErrMissingColumn = errors.New("missing column")
	ErrBadValue      = errors.New("bad value")
	ErrUnknownKind   = errors.New("unknown source kind")
)
