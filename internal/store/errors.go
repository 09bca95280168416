package store

import (
	"errors"
	"fmt"
)

// ErrJobNotFound indicates the requested job id is not tracked. This is an
// expected outcome (polling after cleanup, concurrent deletion) and callers
// should branch on it with errors.Is rather than treat it as fatal.
var ErrJobNotFound = errors.New("job not found")

// DuplicateJobError indicates an attempt to create a job id that already
// exists. With UUID ids this should never happen in practice.
type DuplicateJobError struct {
	ID string
}

func (e *DuplicateJobError) Error() string {
	return fmt.Sprintf("job already exists: %s", e.ID)
}
