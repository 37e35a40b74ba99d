package worker

import (
	"errors"
	"fmt"
)

// ErrShutdownTimeout is returned when workers outlive the shutdown context.
var ErrShutdownTimeout = errors.New("worker shutdown timed out")

// JobError records a job that failed.
type JobError struct {
	Job Job
	Err error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s: %v", e.Job.Name, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }
