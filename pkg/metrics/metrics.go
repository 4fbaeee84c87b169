package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// VerificationEmails counts verification emails by outcome (sent|failed).
	VerificationEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_verification_emails_total",
			Help: "Total number of verification email dispatch attempts",
		},
		[]string{"result"},
	)

	// ClockEvents counts attendance clock events by kind (in|out).
	ClockEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_clock_events_total",
			Help: "Total number of clock-in/out events",
		},
		[]string{"kind"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attendance_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
