package entity

import "errors"

// Sentinel kinds for entity errors.
var (
	ErrUnknownMode = errors.New("unknown rating mode")
)
