// Package rendering executes validated animation source in a manim
// subprocess and produces the downloadable video artifact.
package rendering

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/animation-agent/internal/artifacts"
	"github.com/jonathan/animation-agent/internal/validation"
)

// DefaultTimeout is the maximum wall-clock time a single render may take.
const DefaultTimeout = 30 * time.Second

// Renderer runs animation source and returns the path of the produced video.
type Renderer interface {
	Render(ctx context.Context, source, jobID string) (string, error)
}

// Config holds renderer settings.
type Config struct {
	// Binary is the manim executable name or path.
	Binary string
	// Quality selects the manim quality flag: low, medium or high.
	Quality string
	// MediaDir is the scratch directory manim renders into.
	MediaDir string
	// OutputDir is where finished artifacts and source files are placed.
	OutputDir string
	// Timeout bounds one render; the child process is killed on expiry.
	Timeout time.Duration
	// MaxArtifactBytes rejects oversized output when > 0.
	MaxArtifactBytes int64
}

// ManimRenderer implements Renderer by shelling out to manim.
type ManimRenderer struct {
	cfg Config
}

// NewManimRenderer creates a renderer with defaults applied.
func NewManimRenderer(cfg Config) *ManimRenderer {
	if cfg.Binary == "" {
		cfg.Binary = "manim"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MediaDir == "" {
		cfg.MediaDir = "media"
	}
	return &ManimRenderer{cfg: cfg}
}

// Render writes source to disk, runs manim against it under the configured
// timeout, and copies the produced MP4 into the output directory named
// animation_<jobID>.mp4. The scratch media directory is removed afterwards.
func (r *ManimRenderer) Render(ctx context.Context, source, jobID string) (string, error) {
	if _, err := exec.LookPath(r.cfg.Binary); err != nil {
		return "", &ProcessError{
			Output: fmt.Sprintf("%s not found in PATH; install manim to render animations", r.cfg.Binary),
			Cause:  err,
		}
	}

	sceneClass := validation.ExtractSceneClass(source)
	if sceneClass == "" {
		return "", &ProcessError{Output: "could not find Scene class in the code"}
	}

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	srcPath := filepath.Join(r.cfg.OutputDir, artifacts.SourceFilename(jobID))
	if err := os.WriteFile(srcPath, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("failed to write animation source: %w", err)
	}

	// Per-job scratch dir so concurrent renders never share media output.
	mediaDir := filepath.Join(r.cfg.MediaDir, jobID)
	defer func() { _ = os.RemoveAll(mediaDir) }()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.cfg.Binary,
		qualityFlag(r.cfg.Quality),
		"--media_dir", mediaDir,
		srcPath,
		sceneClass,
	)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	output := stdout.String() + stderr.String()

	if ctx.Err() == context.DeadlineExceeded {
		return "", &TimeoutError{Timeout: r.cfg.Timeout}
	}
	if runErr != nil {
		return "", &ProcessError{Output: output, Cause: runErr}
	}

	videoPath, err := findVideo(mediaDir)
	if err != nil {
		return "", err
	}

	if r.cfg.MaxArtifactBytes > 0 {
		info, statErr := os.Stat(videoPath)
		if statErr == nil && info.Size() > r.cfg.MaxArtifactBytes {
			return "", &ProcessError{
				Output: fmt.Sprintf("rendered video is %d bytes, exceeding the %d byte limit", info.Size(), r.cfg.MaxArtifactBytes),
			}
		}
	}

	outPath := filepath.Join(r.cfg.OutputDir, artifacts.VideoFilename(jobID))
	if err := copyFile(videoPath, outPath); err != nil {
		return "", fmt.Errorf("failed to copy rendered video: %w", err)
	}
	return outPath, nil
}

// qualityFlag maps a config quality name to the manim CLI flag.
func qualityFlag(quality string) string {
	switch strings.ToLower(quality) {
	case "medium":
		return "-qm"
	case "high":
		return "-qh"
	default:
		return "-ql"
	}
}

// findVideo locates the MP4 manim produced under the scratch media dir.
// Manim nests output as videos/<source stem>/<resolution>/<Scene>.mp4.
func findVideo(mediaDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(mediaDir, "videos", "*", "*", "*.mp4"))
	if err != nil {
		return "", fmt.Errorf("failed to scan media directory: %w", err)
	}
	if len(matches) == 0 {
		// Some manim versions flatten one level.
		matches, _ = filepath.Glob(filepath.Join(mediaDir, "videos", "*", "*.mp4"))
	}
	if len(matches) == 0 {
		return "", &MissingArtifactError{Dir: mediaDir}
	}
	return matches[0], nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}
