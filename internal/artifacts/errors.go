package artifacts

import (
	"fmt"

	"github.com/jonathan/animation-agent/internal/store"
)

// NotReadyError indicates the job exists but has not completed, so there is
// no artifact to download yet. Distinct from store.ErrJobNotFound.
type NotReadyError struct {
	ID    string
	State store.State
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("animation %s is not ready for download (status: %s)", e.ID, e.State)
}
