package generation

import "fmt"

// GenerationError indicates the code-generation step failed. Stage names the
// phase that failed: prompt, llm, parse or schema.
type GenerationError struct {
	Stage string
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("code generation failed at %s: %v", e.Stage, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
