// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts console logins.
	// Labels:
	//   - outcome: "success", "invalid_credentials", "locked", "error"
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_auth_login_attempts_total",
			Help: "Total number of console login attempts",
		},
		[]string{"outcome"},
	)

	// LoginDuration measures backend login plus privilege fetch.
	LoginDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vbt_auth_login_duration_seconds",
			Help:    "Duration of successful console logins in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// SessionsTerminated counts ended sessions.
	// Labels:
	//   - reason: "logout", "forced", "expired"
	SessionsTerminated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_auth_sessions_terminated_total",
			Help: "Total number of console sessions terminated",
		},
		[]string{"reason"},
	)
)

// RecordLogin records a login attempt and its outcome.
func RecordLogin(outcome string, duration time.Duration) {
	LoginAttempts.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		LoginDuration.Observe(duration.Seconds())
	}
}

// RecordSessionTerminated records why a session ended.
func RecordSessionTerminated(reason string, n int) {
	if n > 0 {
		SessionsTerminated.WithLabelValues(reason).Add(float64(n))
	}
}
