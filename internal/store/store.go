// Package store provides the in-memory job status table shared by the
// orchestrator, the HTTP handlers and the artifact manager.
package store

import (
	"sync"
	"time"
)

// State represents the lifecycle state of an animation job.
type State string

// Job lifecycle states. Terminal states are StateCompleted and StateFailed.
const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transitions can occur from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job is one tracked animation request. Values handed out by the Store are
// copies; mutating them has no effect on the tracked record.
type Job struct {
	ID          string    `json:"animation_id"`
	State       State     `json:"status"`
	Message     string    `json:"message"`
	Progress    string    `json:"progress,omitempty"`
	DownloadURL string    `json:"download_url,omitempty"`
	ErrorDetail string    `json:"error_details,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Update describes a single atomic mutation of a job record. Optional fields
// are only written when non-nil, so callers never clear a field by accident.
type Update struct {
	State       State
	Message     string
	Progress    *string
	DownloadURL *string
	ErrorDetail *string
}

// Store is a thread-safe job table. All reads and writes for the whole table
// go through one mutex; a mutation is visible either completely or not at all.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*Job

	// now is swappable for tests
	now func() time.Time
}

// New creates an empty job store.
func New() *Store {
	return &Store{
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

// Create inserts a new pending record for id. Callers are expected to pass
// freshly generated UUIDs, so a duplicate indicates a programming error and is
// rejected with ErrDuplicateJob rather than silently overwriting.
func (s *Store) Create(id, message string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return Job{}, &DuplicateJobError{ID: id}
	}

	now := s.now()
	job := &Job{
		ID:        id,
		State:     StatePending,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[id] = job
	return *job, nil
}

// Update atomically applies upd to the record for id and refreshes UpdatedAt.
// A missing id returns ErrJobNotFound: the job may have been cleaned up
// concurrently, which is an expected race, not a fault.
func (s *Store) Update(id string, upd Update) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return Job{}, ErrJobNotFound
	}

	job.State = upd.State
	job.Message = upd.Message
	if upd.Progress != nil {
		job.Progress = *upd.Progress
	}
	if upd.DownloadURL != nil {
		job.DownloadURL = *upd.DownloadURL
	}
	if upd.ErrorDetail != nil {
		job.ErrorDetail = *upd.ErrorDetail
	}
	job.UpdatedAt = s.now()
	return *job, nil
}

// Get returns a copy of the record for id, or ErrJobNotFound.
func (s *Store) Get(id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return Job{}, ErrJobNotFound
	}
	return *job, nil
}

// Remove deletes the record for id. Removing an absent id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

// List returns a snapshot copy of every tracked job.
func (s *Store) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// Len returns the number of tracked jobs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// String pointer helpers for Update's optional fields.

// StringPtr returns a pointer to s, for use in Update.
func StringPtr(s string) *string { return &s }
