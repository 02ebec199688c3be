package slurm

import "errors"

// Validation errors
var (
	ErrMissingJobID    = errors.New("job_id is required")
	ErrInvalidArgument = errors.New("argument contains characters that are not allowed")
)
