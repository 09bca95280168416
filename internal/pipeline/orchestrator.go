// Package pipeline contains the job orchestrator: it turns a submitted
// prompt into a tracked, asynchronously executed generate → validate →
// render run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/animation-agent/internal/artifacts"
	"github.com/jonathan/animation-agent/internal/generation"
	"github.com/jonathan/animation-agent/internal/metrics"
	"github.com/jonathan/animation-agent/internal/rendering"
	"github.com/jonathan/animation-agent/internal/store"
	"github.com/jonathan/animation-agent/internal/types"
	"github.com/jonathan/animation-agent/internal/validation"
	"github.com/jonathan/animation-agent/internal/worker"
)

// Validator is the static safety gate applied to generated source.
type Validator func(source string) *types.Violations

// Archiver records terminal job outcomes. Satisfied by *history.Archive.
type Archiver interface {
	Archive(ctx context.Context, job store.Job, prompt string) error
}

// Options configures an Orchestrator.
type Options struct {
	Store     *store.Store
	Generator generation.Generator
	Validator Validator
	Renderer  rendering.Renderer
	Metrics   *metrics.Collector
	// Archive is optional; terminal outcomes are recorded when set.
	Archive Archiver
	// Workers bounds concurrent pipeline runs. Defaults to 4.
	Workers int
	// QueueSize is the submission backlog capacity. Defaults to 64.
	QueueSize int
}

// Orchestrator owns the worker pool and drives the pipeline for every
// submitted job. All failures inside a run are absorbed into a terminal
// Failed status; nothing propagates back to the submitting request.
type Orchestrator struct {
	store     *store.Store
	generator generation.Generator
	validator Validator
	renderer  rendering.Renderer
	metrics   *metrics.Collector
	archive   Archiver
	pool      *worker.Pool
}

// New creates an orchestrator from opts.
func New(opts Options) *Orchestrator {
	if opts.Validator == nil {
		opts.Validator = validation.Validate
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	return &Orchestrator{
		store:     opts.Store,
		generator: opts.Generator,
		validator: opts.Validator,
		renderer:  opts.Renderer,
		metrics:   opts.Metrics,
		archive:   opts.Archive,
		pool:      worker.NewPool(opts.Workers, opts.QueueSize),
	}
}

// Start launches the background workers.
func (o *Orchestrator) Start() {
	o.pool.Start()
}

// Stop drains the pool: queued runs still execute, in-flight runs finish,
// and every job reaches a terminal state before Stop returns.
func (o *Orchestrator) Stop() {
	o.pool.Stop()
}

// Submit registers a new pending job for prompt and queues its pipeline run.
// It returns as soon as the job is tracked and never waits on the pipeline.
func (o *Orchestrator) Submit(prompt string) (store.Job, error) {
	id := uuid.New().String()

	job, err := o.store.Create(id, "queued")
	if err != nil {
		return store.Job{}, err
	}
	if o.metrics != nil {
		o.metrics.RecordSubmitted()
	}

	if err := o.pool.Submit(func(ctx context.Context) { o.run(ctx, id, prompt) }); err != nil {
		// Shutdown race: nothing will ever run this job, so untrack it.
		o.store.Remove(id)
		return store.Job{}, fmt.Errorf("failed to queue animation job: %w", err)
	}

	slog.Info("animation job submitted", "animation_id", id)
	return job, nil
}

// run drives one pipeline execution on a worker goroutine. It must always
// leave the job in a terminal state; a job stuck in Processing would be an
// invariant violation visible to every polling client.
func (o *Orchestrator) run(ctx context.Context, id, prompt string) {
	start := time.Now()
	if o.metrics != nil {
		o.metrics.RecordStarted()
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("pipeline panicked", "animation_id", id, "panic", r)
			o.fail(ctx, id, prompt, start, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if !o.transition(id, "generating animation code", "generating code") {
		return
	}

	src, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("code generation failed", "animation_id", id, "error", err)
		o.fail(ctx, id, prompt, start, err.Error())
		return
	}

	// Hard safety gate: source that fails validation is never rendered.
	if violations := o.validator(src.Code); !violations.Empty() {
		slog.Warn("generated code rejected", "animation_id", id, "violations", len(violations.Violations))
		o.fail(ctx, id, prompt, start, "code validation failed: "+violations.Summary())
		return
	}

	if !o.transition(id, "rendering animation", "rendering") {
		return
	}

	videoPath, err := o.renderer.Render(ctx, src.Code, id)
	if err != nil {
		slog.Warn("render failed", "animation_id", id, "error", err)
		o.fail(ctx, id, prompt, start, err.Error())
		return
	}

	o.complete(ctx, id, prompt, start, videoPath)
}

// transition moves the job into Processing with the given message and
// progress marker. It reports false when the job has been deleted
// concurrently, in which case the run is abandoned.
func (o *Orchestrator) transition(id, message, progress string) bool {
	_, err := o.store.Update(id, store.Update{
		State:    store.StateProcessing,
		Message:  message,
		Progress: store.StringPtr(progress),
	})
	if errors.Is(err, store.ErrJobNotFound) {
		slog.Info("job removed mid-run, abandoning", "animation_id", id)
		if o.metrics != nil {
			o.metrics.RecordAbandoned()
		}
		return false
	}
	return err == nil
}

func (o *Orchestrator) complete(ctx context.Context, id, prompt string, start time.Time, videoPath string) {
	job, err := o.store.Update(id, store.Update{
		State:       store.StateCompleted,
		Message:     "animation created successfully",
		Progress:    store.StringPtr(""),
		DownloadURL: store.StringPtr("/download-animation/" + id),
	})
	if err != nil {
		// The job was deleted while the render was still running. Nothing
		// tracks the files the render just produced, so discard them here.
		slog.Info("job removed before completion could be recorded, discarding artifact", "animation_id", id)
		o.discardArtifact(id, videoPath)
		if o.metrics != nil {
			o.metrics.RecordAbandoned()
		}
		return
	}

	if o.metrics != nil {
		o.metrics.RecordCompleted(time.Since(start).Seconds())
	}
	o.archiveOutcome(ctx, job, prompt)
	slog.Info("animation completed", "animation_id", id, "duration", time.Since(start))
}

func (o *Orchestrator) fail(ctx context.Context, id, prompt string, start time.Time, detail string) {
	job, err := o.store.Update(id, store.Update{
		State:       store.StateFailed,
		Message:     "animation creation failed",
		Progress:    store.StringPtr(""),
		ErrorDetail: store.StringPtr(detail),
	})
	if err != nil {
		slog.Info("job removed before failure could be recorded", "animation_id", id)
		if o.metrics != nil {
			o.metrics.RecordAbandoned()
		}
		return
	}

	if o.metrics != nil {
		o.metrics.RecordFailed(time.Since(start).Seconds())
	}
	o.archiveOutcome(ctx, job, prompt)
}

// discardArtifact removes the video and source files left behind by a render
// whose job no longer exists.
func (o *Orchestrator) discardArtifact(id, videoPath string) {
	if videoPath == "" {
		return
	}
	sourcePath := filepath.Join(filepath.Dir(videoPath), artifacts.SourceFilename(id))
	for _, path := range []string{videoPath, sourcePath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove orphaned artifact file", "path", path, "error", err)
		}
	}
}

func (o *Orchestrator) archiveOutcome(ctx context.Context, job store.Job, prompt string) {
	if o.archive == nil {
		return
	}
	if err := o.archive.Archive(ctx, job, prompt); err != nil {
		slog.Warn("failed to archive render outcome", "animation_id", job.ID, "error", err)
	}
}
