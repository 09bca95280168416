package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/animation-agent/internal/artifacts"
	"github.com/jonathan/animation-agent/internal/store"
	"github.com/jonathan/animation-agent/internal/worker"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var notReady *artifacts.NotReadyError
	var duplicate *store.DuplicateJobError

	switch {
	case errors.Is(err, store.ErrJobNotFound):
		return http.StatusNotFound
	case errors.As(err, &notReady):
		return http.StatusBadRequest
	case errors.As(err, &duplicate):
		return http.StatusConflict
	case errors.Is(err, worker.ErrPoolStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
