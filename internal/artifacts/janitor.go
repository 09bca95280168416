package artifacts

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically removes terminal jobs (and their files) that have not
// been downloaded or deleted within the retention window.
type Janitor struct {
	manager *Manager
	ttl     time.Duration
	cron    *cron.Cron

	// now is swappable for tests
	now func() time.Time
}

// NewJanitor creates a janitor sweeping jobs older than ttl. A zero ttl
// disables sweeping entirely.
func NewJanitor(manager *Manager, ttl time.Duration) *Janitor {
	return &Janitor{
		manager: manager,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Start schedules the sweep on the given cron spec (e.g. "@every 10m").
// It is a no-op when the janitor is disabled.
func (j *Janitor) Start(spec string) error {
	if j.ttl <= 0 {
		slog.Info("artifact janitor disabled")
		return nil
	}

	j.cron = cron.New()
	if _, err := j.cron.AddFunc(spec, j.Sweep); err != nil {
		return err
	}
	j.cron.Start()
	slog.Info("artifact janitor started", "schedule", spec, "ttl", j.ttl)
	return nil
}

// Stop halts the sweep schedule, waiting for a running sweep to finish.
func (j *Janitor) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
	}
}

// Sweep removes every terminal job whose last transition is older than the
// retention window. In-flight jobs are never touched.
func (j *Janitor) Sweep() {
	cutoff := j.now().Add(-j.ttl)
	for _, job := range j.manager.store.List() {
		if job.State.Terminal() && job.UpdatedAt.Before(cutoff) {
			slog.Info("sweeping stale animation", "animation_id", job.ID, "status", job.State)
			j.manager.Cleanup(job.ID)
		}
	}
}
