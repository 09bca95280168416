package rendering

import (
	"fmt"
	"time"
)

// TimeoutError indicates the render exceeded its time budget and the child
// process was killed.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execution timed out after %s", e.Timeout)
}

// ProcessError indicates the render process failed to start or exited with
// an error. Output carries the captured stdout/stderr diagnostics.
type ProcessError struct {
	Output string
	Cause  error
}

func (e *ProcessError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("manim execution failed: %s", e.Output)
	}
	return fmt.Sprintf("manim execution failed: %v", e.Cause)
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// MissingArtifactError indicates the render exited cleanly but produced no
// video file.
type MissingArtifactError struct {
	Dir string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("no output video file found under %s", e.Dir)
}
