// File: utils/metrics.go
package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConversationTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_turns_total",
			Help: "Total number of conversation turns processed",
		},
		[]string{"business_id"},
	)

	ConversationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_failures_total",
			Help: "Total number of conversation turns that returned an error",
		},
		[]string{"business_id"},
	)

	ConversationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "conversation_turn_duration_seconds",
			Help:    "Duration of conversation turn processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	AppointmentsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appointments_scheduled_total",
			Help: "Total number of appointments booked through the assistant",
		},
		[]string{"business_id"},
	)

	CallbacksEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callbacks_enqueued_total",
			Help: "Total number of callers handed off to the callback queue",
		},
		[]string{"business_id", "reason"},
	)

	WebhookReplays = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_replays_dropped_total",
			Help: "Total number of duplicate webhook deliveries dropped",
		},
	)
)
