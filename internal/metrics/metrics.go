// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "launchpad_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchpad_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "launchpad_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// Database
	DBConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchpad_db_connect_attempts_total",
			Help: "MongoDB connection attempts by result",
		},
		[]string{"result"}, // success, config_error, connect_error
	)

	DBOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchpad_db_operation_errors_total",
			Help: "Failed store operations",
		},
		[]string{"collection", "operation"},
	)

	// Auth
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchpad_auth_attempts_total",
			Help: "Sign-in attempts by method and result",
		},
		[]string{"method", "result"}, // method: credentials, oidc, admin
	)

	// Payments
	PaymentRequests = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "launchpad_payment_request_duration_seconds",
			Help:    "Payment processor request latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "result"},
	)

	PaymentFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchpad_payment_fallbacks_total",
			Help: "Dashboard responses served from placeholder data",
		},
		[]string{"endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "launchpad_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchpad_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchpad_webhook_events_total",
			Help: "Payment webhook deliveries by event type and result",
		},
		[]string{"type", "result"},
	)

	// Outbox
	OutboxDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchpad_outbox_deliveries_total",
			Help: "Outbox delivery attempts by outcome",
		},
		[]string{"kind", "outcome"}, // sent, retry, failed
	)

	OutboxQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "launchpad_outbox_jobs",
			Help: "Outbox jobs by status",
		},
		[]string{"status"},
	)

	// Uploads
	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchpad_uploads_total",
			Help: "Image uploads by backend and result",
		},
		[]string{"backend", "result"},
	)

	// Authorization
	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchpad_authz_decisions_total",
			Help: "Authorization decisions by role and result",
		},
		[]string{"role", "result"},
	)

	// WebSocket
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "launchpad_websocket_connections",
			Help: "Connected admin dashboard websocket clients",
		},
	)
)

// RecordAPIRequest records one completed request.
func RecordAPIRequest(method, route, status string, d time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordPaymentRequest records a payment processor call.
func RecordPaymentRequest(operation string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	PaymentRequests.WithLabelValues(operation, result).Observe(d.Seconds())
}

// RecordAuthAttempt records a sign-in attempt.
func RecordAuthAttempt(method string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	AuthAttempts.WithLabelValues(method, result).Inc()
}
