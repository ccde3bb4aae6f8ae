// Package prom exposes Prometheus collectors for the integration hub.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhooksTotal counts webhook requests by detected source and outcome.
	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "integrationhub",
			Subsystem: "webhook",
			Name:      "requests_total",
			Help:      "Total number of webhook requests by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	// WebhookDuration tracks end-to-end webhook processing time.
	WebhookDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "integrationhub",
			Subsystem: "webhook",
			Name:      "duration_seconds",
			Help:      "Duration of webhook processing in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"source"},
	)

	// HookFailures counts post-commit hook errors and panics.
	HookFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "integrationhub",
			Subsystem: "hooks",
			Name:      "failures_total",
			Help:      "Total number of failed post-commit hooks",
		},
		[]string{"hook"},
	)

	// CommissionsRecorded counts newly inserted commission rows.
	CommissionsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "integrationhub",
			Subsystem: "commission",
			Name:      "recorded_total",
			Help:      "Total number of commissions recorded",
		},
	)

	// DirectorySyncRuns counts directory sync runs by outcome.
	DirectorySyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "integrationhub",
			Subsystem: "directory_sync",
			Name:      "runs_total",
			Help:      "Total number of directory sync runs by outcome",
		},
		[]string{"outcome"},
	)

	// DirectoryDiscrepancies counts discrepancies first opened during syncs.
	DirectoryDiscrepancies = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "integrationhub",
			Subsystem: "directory_sync",
			Name:      "discrepancies_total",
			Help:      "Total number of access discrepancies detected",
		},
	)

	// KafkaMessagesPublished counts notification publishes by topic and status.
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "integrationhub",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of notifications published to Kafka",
		},
		[]string{"topic", "status"},
	)
)

// RecordWebhook records one processed webhook.
func RecordWebhook(source, outcome string, durationSeconds float64) {
	WebhooksTotal.WithLabelValues(source, outcome).Inc()
	WebhookDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordSyncRun records a finished directory sync.
func RecordSyncRun(outcome string, discrepancies int) {
	DirectorySyncRuns.WithLabelValues(outcome).Inc()
	if discrepancies > 0 {
		DirectoryDiscrepancies.Add(float64(discrepancies))
	}
}
