// Package metrics collects Prometheus metrics for the animation pipeline and
// exposes them over HTTP.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the pipeline metrics. It carries its own registry so tests
// can create collectors freely without duplicate-registration panics.
type Collector struct {
	registry *prometheus.Registry

	jobsSubmitted prometheus.Counter
	jobsCompleted prometheus.Counter
	jobsFailed    prometheus.Counter
	jobsInFlight  prometheus.Gauge
	jobDuration   prometheus.Histogram
}

// NewCollector creates and registers the pipeline metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		jobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "animation_jobs_submitted_total",
			Help: "Total number of animation jobs submitted",
		}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "animation_jobs_completed_total",
			Help: "Total number of animation jobs completed successfully",
		}),
		jobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "animation_jobs_failed_total",
			Help: "Total number of animation jobs that ended in failure",
		}),
		jobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "animation_jobs_in_flight",
			Help: "Number of animation jobs currently being processed",
		}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "animation_job_duration_seconds",
			Help:    "End-to-end pipeline duration per job in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
	}

	c.registry.MustRegister(
		c.jobsSubmitted,
		c.jobsCompleted,
		c.jobsFailed,
		c.jobsInFlight,
		c.jobDuration,
	)
	return c
}

// RecordSubmitted counts a new job submission.
func (c *Collector) RecordSubmitted() {
	c.jobsSubmitted.Inc()
}

// RecordStarted marks a job as in flight.
func (c *Collector) RecordStarted() {
	c.jobsInFlight.Inc()
}

// RecordCompleted counts a successful job and its duration.
func (c *Collector) RecordCompleted(durationSeconds float64) {
	c.jobsInFlight.Dec()
	c.jobsCompleted.Inc()
	c.jobDuration.Observe(durationSeconds)
}

// RecordFailed counts a failed job and its duration.
func (c *Collector) RecordFailed(durationSeconds float64) {
	c.jobsInFlight.Dec()
	c.jobsFailed.Inc()
	c.jobDuration.Observe(durationSeconds)
}

// RecordAbandoned takes a job out of flight without counting it as a failure
// or observing a duration. Used when the job record was deleted mid-run.
func (c *Collector) RecordAbandoned() {
	c.jobsInFlight.Dec()
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
