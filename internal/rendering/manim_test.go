package rendering

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/animation-agent/internal/artifacts"
)

const testSource = `from manim import *

class HelloScene(Scene):
    def construct(self):
        self.play(Write(Text("hi")))
`

// writeFakeManim writes an executable shell script standing in for the manim
// binary. The script receives (-q?, --media_dir, <dir>, <src>, <scene>).
func writeFakeManim(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-manim")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func testConfig(t *testing.T, binary string) Config {
	t.Helper()
	return Config{
		Binary:    binary,
		Quality:   "low",
		MediaDir:  filepath.Join(t.TempDir(), "media"),
		OutputDir: filepath.Join(t.TempDir(), "animations"),
		Timeout:   5 * time.Second,
	}
}

func TestQualityFlag(t *testing.T) {
	assert.Equal(t, "-ql", qualityFlag("low"))
	assert.Equal(t, "-qm", qualityFlag("medium"))
	assert.Equal(t, "-qh", qualityFlag("HIGH"))
	assert.Equal(t, "-ql", qualityFlag(""))
	assert.Equal(t, "-ql", qualityFlag("bogus"))
}

func TestRender_Success(t *testing.T) {
	binary := writeFakeManim(t, `mkdir -p "$3/videos/scene/480p15"
printf 'fake-video-bytes' > "$3/videos/scene/480p15/HelloScene.mp4"`)
	r := NewManimRenderer(testConfig(t, binary))

	path, err := r.Render(context.Background(), testSource, "job1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.cfg.OutputDir, artifacts.VideoFilename("job1")), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake-video-bytes", string(data))

	// The intermediate source survives next to the artifact for cleanup.
	assert.FileExists(t, filepath.Join(r.cfg.OutputDir, artifacts.SourceFilename("job1")))

	// Scratch media dir is removed after a successful render.
	assert.NoDirExists(t, filepath.Join(r.cfg.MediaDir, "job1"))
}

func TestRender_BinaryMissing(t *testing.T) {
	r := NewManimRenderer(testConfig(t, "definitely-not-a-real-binary-zzz"))

	_, err := r.Render(context.Background(), testSource, "job1")
	require.Error(t, err)
	var procErr *ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Contains(t, procErr.Output, "not found in PATH")
}

func TestRender_NoSceneClass(t *testing.T) {
	binary := writeFakeManim(t, "exit 0")
	r := NewManimRenderer(testConfig(t, binary))

	_, err := r.Render(context.Background(), "print('no scene')", "job1")
	require.Error(t, err)
	var procErr *ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Contains(t, procErr.Output, "Scene class")
}

func TestRender_Timeout(t *testing.T) {
	binary := writeFakeManim(t, "sleep 10")
	cfg := testConfig(t, binary)
	cfg.Timeout = 100 * time.Millisecond
	r := NewManimRenderer(cfg)

	start := time.Now()
	_, err := r.Render(context.Background(), testSource, "job1")
	require.Error(t, err)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 5*time.Second, "child process must be killed on expiry")
}

func TestRender_ProcessFailure(t *testing.T) {
	binary := writeFakeManim(t, `echo "Traceback: boom" >&2
exit 1`)
	r := NewManimRenderer(testConfig(t, binary))

	_, err := r.Render(context.Background(), testSource, "job1")
	require.Error(t, err)

	var procErr *ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Contains(t, procErr.Output, "Traceback: boom")
}

func TestRender_MissingArtifact(t *testing.T) {
	binary := writeFakeManim(t, "exit 0")
	r := NewManimRenderer(testConfig(t, binary))

	_, err := r.Render(context.Background(), testSource, "job1")
	require.Error(t, err)

	var missingErr *MissingArtifactError
	assert.ErrorAs(t, err, &missingErr)
}

func TestRender_OversizedArtifact(t *testing.T) {
	binary := writeFakeManim(t, `mkdir -p "$3/videos/scene/480p15"
printf 'way-more-than-four-bytes' > "$3/videos/scene/480p15/HelloScene.mp4"`)
	cfg := testConfig(t, binary)
	cfg.MaxArtifactBytes = 4
	r := NewManimRenderer(cfg)

	_, err := r.Render(context.Background(), testSource, "job1")
	require.Error(t, err)
	var procErr *ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Contains(t, procErr.Output, "limit")
}

func TestRender_FlattenedMediaLayout(t *testing.T) {
	binary := writeFakeManim(t, `mkdir -p "$3/videos/scene"
printf 'flat' > "$3/videos/scene/HelloScene.mp4"`)
	r := NewManimRenderer(testConfig(t, binary))

	path, err := r.Render(context.Background(), testSource, "job1")
	require.NoError(t, err)
	assert.FileExists(t, path)
}
