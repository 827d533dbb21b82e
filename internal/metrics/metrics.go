// Package metrics provides Prometheus metrics for the generation pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "infographic_tasks_started_total",
			Help: "Total number of generation tasks created",
		},
	)
	TasksCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "infographic_tasks_completed_total",
			Help: "Total number of generation tasks that completed successfully",
		},
	)
	TasksFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "infographic_tasks_failed_total",
			Help: "Total number of generation tasks that failed",
		},
	)
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "infographic_generation_duration_seconds",
			Help:    "Generation job duration in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"status"},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infographic_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "infographic_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func RecordTaskStarted() {
	TasksStarted.Inc()
}

func RecordTaskCompleted(duration time.Duration) {
	TasksCompleted.Inc()
	GenerationDuration.WithLabelValues("completed").Observe(duration.Seconds())
}

func RecordTaskFailed(duration time.Duration) {
	TasksFailed.Inc()
	GenerationDuration.WithLabelValues("failed").Observe(duration.Seconds())
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
