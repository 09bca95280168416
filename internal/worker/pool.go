// Package worker provides the fixed-size pool that bounds how many animation
// pipelines run concurrently. The pool size is the system's only admission
// control: submissions beyond capacity queue on the task channel rather than
// being rejected.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrPoolStopped is returned by Submit after Stop has been called.
var ErrPoolStopped = errors.New("worker pool stopped")

// Task is one unit of background work. The context is cancelled when the
// pool shuts down; long-running tasks may check it to abandon work early.
type Task func(ctx context.Context)

// Pool manages a fixed set of worker goroutines consuming a buffered task
// queue.
type Pool struct {
	workers int
	tasks   chan Task
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a pool with the given worker count and queue capacity.
func NewPool(workers, queueSize int) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers: workers,
		tasks:   make(chan Task, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	slog.Info("starting worker pool", "workers", p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues a task for execution. It blocks while the queue is full and
// fails only once the pool has been stopped.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.tasks <- task:
		return nil
	case <-p.ctx.Done():
		return ErrPoolStopped
	}
}

// Stop shuts the pool down gracefully: no new submissions are accepted,
// queued tasks are drained, and Stop returns once every in-flight task has
// finished.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	slog.Info("stopping worker pool")
	p.wg.Wait()
	p.cancel()
	slog.Info("worker pool stopped")
}

// QueueLength returns the number of tasks waiting for a worker.
func (p *Pool) QueueLength() int {
	return len(p.tasks)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	slog.Debug("worker started", "worker_id", id)

	for task := range p.tasks {
		task(p.ctx)
	}

	slog.Debug("worker stopped", "worker_id", id)
}
