package repository

import "errors"

// Sentinel kinds for rating store errors.
var (
	ErrTableNotFound = errors.New("rating table not found")
	ErrNotFound      = errors.New("label not found")
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrInvalidName   = errors.New("invalid table name")
)
