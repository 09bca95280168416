package artifacts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/animation-agent/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	st := store.New()
	m, err := NewManager(t.TempDir(), st)
	require.NoError(t, err)
	return m, st
}

func completeJob(t *testing.T, m *Manager, st *store.Store, id string) {
	t.Helper()
	_, err := st.Create(id, "queued")
	require.NoError(t, err)
	_, err = st.Update(id, store.Update{
		State:       store.StateCompleted,
		Message:     "done",
		DownloadURL: store.StringPtr("/download-animation/" + id),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(m.VideoPath(id), []byte("fake mp4 bytes"), 0o644))
	require.NoError(t, os.WriteFile(m.SourcePath(id), []byte("from manim import *"), 0o644))
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "animation_abc.mp4", VideoFilename("abc"))
	assert.Equal(t, "animation_abc.py", SourceFilename("abc"))
}

func TestResolveForDownload_Completed(t *testing.T) {
	m, st := newTestManager(t)
	completeJob(t, m, st, "abc")

	path, err := m.ResolveForDownload("abc")
	require.NoError(t, err)
	assert.Equal(t, m.VideoPath("abc"), path)
}

func TestResolveForDownload_Unknown(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.ResolveForDownload("missing")
	assert.ErrorIs(t, err, store.ErrJobNotFound)
}

func TestResolveForDownload_NotReady(t *testing.T) {
	m, st := newTestManager(t)
	_, err := st.Create("abc", "queued")
	require.NoError(t, err)

	_, err = m.ResolveForDownload("abc")
	require.Error(t, err)
	var notReady *NotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Equal(t, store.StatePending, notReady.State)
}

func TestResolveForDownload_FileVanished(t *testing.T) {
	m, st := newTestManager(t)
	completeJob(t, m, st, "abc")
	require.NoError(t, os.Remove(m.VideoPath("abc")))

	_, err := m.ResolveForDownload("abc")
	assert.ErrorIs(t, err, store.ErrJobNotFound)
}

func TestCleanup_RemovesFilesAndRecord(t *testing.T) {
	m, st := newTestManager(t)
	completeJob(t, m, st, "abc")

	m.Cleanup("abc")

	_, err := st.Get("abc")
	assert.ErrorIs(t, err, store.ErrJobNotFound)
	assert.NoFileExists(t, m.VideoPath("abc"))
	assert.NoFileExists(t, m.SourcePath("abc"))
}

func TestCleanup_Idempotent(t *testing.T) {
	m, st := newTestManager(t)
	completeJob(t, m, st, "abc")

	m.Cleanup("abc")
	assert.NotPanics(t, func() { m.Cleanup("abc") })
	assert.NotPanics(t, func() { m.Cleanup("never-existed") })
}

func TestDelete_UnknownJob(t *testing.T) {
	m, _ := newTestManager(t)
	err := m.Delete("missing")
	assert.ErrorIs(t, err, store.ErrJobNotFound)
}

func TestDelete_AnyState(t *testing.T) {
	m, st := newTestManager(t)
	_, err := st.Create("abc", "queued")
	require.NoError(t, err)

	// Pending job with no files yet is deletable.
	require.NoError(t, m.Delete("abc"))
	_, err = st.Get("abc")
	assert.ErrorIs(t, err, store.ErrJobNotFound)
}

func TestList_IncludesArtifactDetails(t *testing.T) {
	m, st := newTestManager(t)
	completeJob(t, m, st, "done-job")
	_, err := st.Create("pending-job", "queued")
	require.NoError(t, err)

	entries := m.List()
	require.Len(t, entries, 2)

	byID := make(map[string]Entry)
	for _, e := range entries {
		byID[e.ID] = e
	}

	done := byID["done-job"]
	assert.Equal(t, VideoFilename("done-job"), done.Filename)
	assert.Equal(t, int64(len("fake mp4 bytes")), done.SizeBytes)

	pending := byID["pending-job"]
	assert.Empty(t, pending.Filename)
	assert.Zero(t, pending.SizeBytes)
}

func TestJanitor_SweepsStaleTerminalJobs(t *testing.T) {
	m, st := newTestManager(t)
	completeJob(t, m, st, "stale")
	_, err := st.Create("active", "queued")
	require.NoError(t, err)

	j := NewJanitor(m, time.Hour)
	j.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	j.Sweep()

	_, err = st.Get("stale")
	assert.ErrorIs(t, err, store.ErrJobNotFound)
	assert.NoFileExists(t, m.VideoPath("stale"))

	// Non-terminal jobs are never swept, however old.
	_, err = st.Get("active")
	assert.NoError(t, err)
}

func TestJanitor_FreshJobsSurvive(t *testing.T) {
	m, st := newTestManager(t)
	completeJob(t, m, st, "fresh")

	j := NewJanitor(m, time.Hour)
	j.Sweep()

	_, err := st.Get("fresh")
	assert.NoError(t, err)
	assert.FileExists(t, filepath.Join(m.Dir(), VideoFilename("fresh")))
}

func TestJanitor_DisabledByZeroTTL(t *testing.T) {
	m, _ := newTestManager(t)
	j := NewJanitor(m, 0)
	require.NoError(t, j.Start("@every 1m"))
	j.Stop()
}
