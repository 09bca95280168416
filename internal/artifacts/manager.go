// Package artifacts owns the on-disk layout of rendered videos and their
// intermediate source files, and ties file cleanup to job-record removal.
package artifacts

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jonathan/animation-agent/internal/store"
)

// VideoFilename returns the artifact filename for a job id.
func VideoFilename(id string) string {
	return fmt.Sprintf("animation_%s.mp4", id)
}

// SourceFilename returns the intermediate source filename for a job id.
func SourceFilename(id string) string {
	return fmt.Sprintf("animation_%s.py", id)
}

// Manager resolves, lists and deletes artifacts keyed by job id. File paths
// are derived solely from the id, so concurrent jobs never collide.
type Manager struct {
	dir   string
	store *store.Store
}

// NewManager creates a manager rooted at dir, creating it if needed.
func NewManager(dir string, st *store.Store) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts directory %s: %w", dir, err)
	}
	return &Manager{dir: dir, store: st}, nil
}

// Dir returns the artifacts directory.
func (m *Manager) Dir() string {
	return m.dir
}

// VideoPath returns the absolute path of the rendered video for id.
func (m *Manager) VideoPath(id string) string {
	return filepath.Join(m.dir, VideoFilename(id))
}

// SourcePath returns the absolute path of the generated source for id.
func (m *Manager) SourcePath(id string) string {
	return filepath.Join(m.dir, SourceFilename(id))
}

// ResolveForDownload returns the video path for a completed job.
// A tracked but unfinished job yields a NotReadyError, which callers must
// surface differently from store.ErrJobNotFound.
func (m *Manager) ResolveForDownload(id string) (string, error) {
	job, err := m.store.Get(id)
	if err != nil {
		return "", err
	}
	if job.State != store.StateCompleted {
		return "", &NotReadyError{ID: id, State: job.State}
	}

	path := m.VideoPath(id)
	if _, err := os.Stat(path); err != nil {
		// Completed job whose file vanished out from under us. Treat it
		// like an unknown job rather than stream nothing.
		return "", store.ErrJobNotFound
	}
	return path, nil
}

// Cleanup deletes the artifact and source files for id and drops the job
// record. Missing files are not an error; calling Cleanup twice is safe.
func (m *Manager) Cleanup(id string) {
	removeIfPresent(m.VideoPath(id))
	removeIfPresent(m.SourcePath(id))
	m.store.Remove(id)
}

// Delete is the user-triggered variant of Cleanup. It is callable at any job
// state but fails with store.ErrJobNotFound when the job is untracked.
func (m *Manager) Delete(id string) error {
	if _, err := m.store.Get(id); err != nil {
		return err
	}
	m.Cleanup(id)
	return nil
}

// Entry is one job in a listing, with artifact details filled in for
// completed jobs.
type Entry struct {
	store.Job
	Filename  string `json:"filename,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// List returns a snapshot of every tracked job. For completed jobs the
// artifact filename and size are included when the file is still on disk.
func (m *Manager) List() []Entry {
	jobs := m.store.List()
	entries := make([]Entry, 0, len(jobs))
	for _, job := range jobs {
		entry := Entry{Job: job}
		if job.State == store.StateCompleted {
			if info, err := os.Stat(m.VideoPath(job.ID)); err == nil {
				entry.Filename = info.Name()
				entry.SizeBytes = info.Size()
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func removeIfPresent(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove artifact file", "path", path, "error", err)
	}
}
