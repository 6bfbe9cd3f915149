// Package metrics provides Prometheus metrics for the approval bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "approvalbot"
)

// Workflow metrics
var (
	// EventsTotal counts handled inbound events by kind and result.
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "events_total",
			Help:      "Total number of inbound chat events handled",
		},
		[]string{"kind", "result"},
	)

	// TransitionsTotal counts submission status transitions.
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "Total number of submission status transitions",
		},
		[]string{"to"},
	)

	// NotifyFailuresTotal counts outbound notification failures.
	NotifyFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "notify_failures_total",
			Help:      "Total number of failed outbound notifications",
		},
	)

	// StorageErrorsTotal counts persistence failures.
	StorageErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Total number of storage load/save failures",
		},
	)
)

// HTTP metrics
var (
	// WebhookRequestsTotal counts webhook deliveries by status.
	WebhookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "webhook_requests_total",
			Help:      "Total number of webhook requests",
		},
		[]string{"status"},
	)

	// WebhookDuration tracks webhook handling latency.
	WebhookDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "webhook_duration_seconds",
			Help:      "Webhook handling latency in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)
)

// Telegram client metrics
var (
	// APICallsTotal counts Bot API calls by method and result.
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "telegram",
			Name:      "api_calls_total",
			Help:      "Total number of Telegram Bot API calls",
		},
		[]string{"method", "result"},
	)
)
