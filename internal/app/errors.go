package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoSource = errors.New("no possession source configured")
	ErrNoJobs   = errors.New("no jobs to run")
)
