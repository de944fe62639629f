// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Console API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_api_requests_total",
			Help: "Total number of console API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vbt_api_request_duration_seconds",
			Help:    "Console API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vbt_api_active_requests",
			Help: "Current number of in-flight console API requests",
		},
	)

	AccessDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_access_denied_total",
			Help: "Requests rejected by the RBAC gate",
		},
		[]string{"privilege"},
	)

	SubmitConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_submit_conflicts_total",
			Help: "Form submits rejected because one was already in flight",
		},
		[]string{"form"},
	)

	// Backend client
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_backend_requests_total",
			Help: "Requests sent to the booking backend",
		},
		[]string{"method", "resource", "outcome"}, // outcome: status code or error kind
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vbt_backend_request_duration_seconds",
			Help:    "Booking backend request duration in seconds",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "resource"},
	)

	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_token_refreshes_total",
			Help: "Backend token refresh attempts",
		},
		[]string{"result"}, // success, failure
	)

	ForcedLogouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vbt_forced_logouts_total",
			Help: "Sessions ended because the backend rejected the refreshed token",
		},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vbt_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_circuit_breaker_requests_total",
			Help: "Requests passing through the circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// List cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_cache_hits_total",
			Help: "List cache hits",
		},
		[]string{"resource"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_cache_misses_total",
			Help: "List cache misses",
		},
		[]string{"resource"},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vbt_cache_entries",
			Help: "Current number of cached list responses",
		},
	)

	// Sessions
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vbt_sessions_active",
			Help: "Sessions created minus sessions ended since start",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vbt_sessions_expired_total",
			Help: "Sessions removed by the expiry janitor",
		},
	)

	// Spreadsheet import
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_import_rows_total",
			Help: "Shipment spreadsheet rows processed",
		},
		[]string{"result"}, // valid, invalid, created, failed
	)

	ExportRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vbt_export_rows_total",
			Help: "Shipment orders written to spreadsheets",
		},
	)

	// Audit trail
	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_audit_events_total",
			Help: "Audit events by outcome: stored, dropped or failed",
		},
		[]string{"outcome"},
	)
)

// RecordAPIRequest records a completed console API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBackendRequest records a backend call. outcome is the HTTP status
// code when a response arrived, otherwise the error kind.
func RecordBackendRequest(method, resource, outcome string, duration time.Duration) {
	BackendRequestsTotal.WithLabelValues(method, resource, outcome).Inc()
	BackendRequestDuration.WithLabelValues(method, resource).Observe(duration.Seconds())
}

// StatusOutcome formats an HTTP status for RecordBackendRequest.
func StatusOutcome(code int) string {
	return strconv.Itoa(code)
}

// RecordTokenRefresh counts a refresh attempt.
func RecordTokenRefresh(success bool) {
	if success {
		TokenRefreshes.WithLabelValues("success").Inc()
		return
	}
	TokenRefreshes.WithLabelValues("failure").Inc()
}

// RecordCacheLookup counts a cache hit or miss for resource.
func RecordCacheLookup(resource string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(resource).Inc()
		return
	}
	CacheMisses.WithLabelValues(resource).Inc()
}

// RecordImportRows adds n rows with the given result.
func RecordImportRows(result string, n int) {
	if n > 0 {
		ImportRows.WithLabelValues(result).Add(float64(n))
	}
}
