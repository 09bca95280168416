package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonathan/animation-agent/internal/artifacts"
	"github.com/jonathan/animation-agent/internal/store"
)

// AnimationRequest represents the request body for /create-animation
type AnimationRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1,max=2000"`
}

// AnimationResponse represents a job in API responses. DownloadURL is
// serialized as null until the job completes.
type AnimationResponse struct {
	AnimationID string  `json:"animation_id"`
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Progress    string  `json:"progress,omitempty"`
	DownloadURL *string `json:"download_url"`
	ErrorDetail string  `json:"error_details,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

func toAnimationResponse(job store.Job) AnimationResponse {
	resp := AnimationResponse{
		AnimationID: job.ID,
		Status:      string(job.State),
		Message:     job.Message,
		Progress:    job.Progress,
		ErrorDetail: job.ErrorDetail,
		CreatedAt:   job.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   job.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if job.DownloadURL != "" {
		resp.DownloadURL = &job.DownloadURL
	}
	return resp
}

// handleCreateAnimation registers a new animation job and returns immediately;
// rendering happens in the background.
func (s *Server) handleCreateAnimation(w http.ResponseWriter, r *http.Request) {
	var req AnimationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "prompt is required and must be at most 2000 characters")
		return
	}

	job, err := s.submitter.Submit(req.Prompt)
	if err != nil {
		slog.Error("failed to submit animation job", "error", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, toAnimationResponse(job))
}

// handleAnimationStatus returns the current status of a job
func (s *Server) handleAnimationStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("animation_id")

	job, err := s.store.Get(id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Animation not found: "+id)
		return
	}

	s.jsonResponse(w, http.StatusOK, toAnimationResponse(job))
}

// handleDownloadAnimation streams the rendered video. The artifact is
// single-use: once the stream has been written, the files and the job record
// are removed, so a repeat download returns 404.
func (s *Server) handleDownloadAnimation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("animation_id")

	path, err := s.artifacts.ResolveForDownload(id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifacts.VideoFilename(id)))
	http.ServeFile(w, r, path)

	s.artifacts.Cleanup(id)
	slog.Info("animation downloaded and cleaned up", "animation_id", id)
}

// handleListAnimations returns a snapshot of every tracked job
func (s *Server) handleListAnimations(w http.ResponseWriter, _ *http.Request) {
	entries := s.artifacts.List()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"animations": entries,
		"count":      len(entries),
	})
}

// handleDeleteAnimation removes a job and its files at any state
func (s *Server) handleDeleteAnimation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("animation_id")

	if err := s.artifacts.Delete(id); err != nil {
		s.errorResponse(w, HTTPStatus(err), "Animation not found: "+id)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Animation %s deleted successfully", id),
	})
}
