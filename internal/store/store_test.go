package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	s := New()

	job, err := s.Create("abc", "queued")
	require.NoError(t, err)
	assert.Equal(t, "abc", job.ID)
	assert.Equal(t, StatePending, job.State)
	assert.Equal(t, "queued", job.Message)
	assert.Empty(t, job.DownloadURL)
	assert.Empty(t, job.ErrorDetail)
	assert.Equal(t, job.CreatedAt, job.UpdatedAt)
}

func TestCreate_Duplicate(t *testing.T) {
	s := New()

	_, err := s.Create("abc", "queued")
	require.NoError(t, err)

	_, err = s.Create("abc", "queued again")
	require.Error(t, err)
	var dupErr *DuplicateJobError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "abc", dupErr.ID)

	// Original record untouched
	job, err := s.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, "queued", job.Message)
}

func TestUpdate(t *testing.T) {
	s := New()
	_, err := s.Create("abc", "queued")
	require.NoError(t, err)

	job, err := s.Update("abc", Update{
		State:    StateProcessing,
		Message:  "working",
		Progress: StringPtr("generating code"),
	})
	require.NoError(t, err)
	assert.Equal(t, StateProcessing, job.State)
	assert.Equal(t, "working", job.Message)
	assert.Equal(t, "generating code", job.Progress)
	assert.False(t, job.UpdatedAt.Before(job.CreatedAt))
}

func TestUpdate_NotFound(t *testing.T) {
	s := New()

	_, err := s.Update("missing", Update{State: StateProcessing, Message: "working"})
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestUpdate_OptionalFieldsNotClobbered(t *testing.T) {
	s := New()
	_, err := s.Create("abc", "queued")
	require.NoError(t, err)

	_, err = s.Update("abc", Update{
		State:    StateProcessing,
		Message:  "working",
		Progress: StringPtr("rendering"),
	})
	require.NoError(t, err)

	// An update with nil Progress leaves the previous value in place.
	job, err := s.Update("abc", Update{State: StateProcessing, Message: "still working"})
	require.NoError(t, err)
	assert.Equal(t, "rendering", job.Progress)
}

func TestUpdate_RefreshesUpdatedAt(t *testing.T) {
	s := New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	_, err := s.Create("abc", "queued")
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(5 * time.Second) }
	job, err := s.Update("abc", Update{State: StateProcessing, Message: "working"})
	require.NoError(t, err)
	assert.Equal(t, base, job.CreatedAt)
	assert.Equal(t, base.Add(5*time.Second), job.UpdatedAt)
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := New()
	_, err := s.Create("abc", "queued")
	require.NoError(t, err)

	job, err := s.Get("abc")
	require.NoError(t, err)
	job.Message = "mutated by caller"

	fresh, err := s.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, "queued", fresh.Message)
}

func TestRemove_Idempotent(t *testing.T) {
	s := New()
	_, err := s.Create("abc", "queued")
	require.NoError(t, err)

	s.Remove("abc")
	s.Remove("abc") // second removal is a no-op
	s.Remove("never-existed")

	_, err = s.Get("abc")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestList_Snapshot(t *testing.T) {
	s := New()
	for i := 0; i < 3; i++ {
		_, err := s.Create(fmt.Sprintf("job-%d", i), "queued")
		require.NoError(t, err)
	}

	jobs := s.List()
	assert.Len(t, jobs, 3)

	// Mutating the snapshot does not touch the store.
	jobs[0].Message = "mutated"
	fresh, err := s.Get(jobs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "queued", fresh.Message)
}

func TestState_Terminal(t *testing.T) {
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateProcessing.Terminal())
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateFailed.Terminal())
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("job-%d", i)
			_, err := s.Create(id, "queued")
			assert.NoError(t, err)
			_, err = s.Update(id, Update{State: StateProcessing, Message: "working"})
			assert.NoError(t, err)
			_, err = s.Get(id)
			assert.NoError(t, err)
			s.List()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, s.Len())
	for _, job := range s.List() {
		assert.Equal(t, StateProcessing, job.State)
	}
}
