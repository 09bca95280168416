package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/animation-agent/internal/store"
)

// requireTestDB skips unless TEST_DATABASE_URL points at a reachable
// Postgres instance.
func requireTestDB(t *testing.T) *Archive {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping history integration test")
	}
	a, err := Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestArchiveAndRecent(t *testing.T) {
	a := requireTestDB(t)
	ctx := context.Background()

	id := uuid.New().String()
	now := time.Now().UTC().Truncate(time.Microsecond)
	job := store.Job{
		ID:        id,
		State:     store.StateCompleted,
		Message:   "done",
		CreatedAt: now.Add(-10 * time.Second),
		UpdatedAt: now,
	}

	require.NoError(t, a.Archive(ctx, job, "a bouncing ball"))

	records, err := a.Recent(ctx, 10)
	require.NoError(t, err)

	var found *Record
	for i := range records {
		if records[i].AnimationID == id {
			found = &records[i]
			break
		}
	}
	require.NotNil(t, found, "archived record should be returned by Recent")
	assert.Equal(t, "completed", found.Status)
	assert.Equal(t, "a bouncing ball", found.Prompt)
}

func TestArchive_Idempotent(t *testing.T) {
	a := requireTestDB(t)
	ctx := context.Background()

	id := uuid.New().String()
	job := store.Job{
		ID:        id,
		State:     store.StateFailed,
		Message:   "failed",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	require.NoError(t, a.Archive(ctx, job, "p"))
	job.Message = "failed again"
	require.NoError(t, a.Archive(ctx, job, "p"))
}
