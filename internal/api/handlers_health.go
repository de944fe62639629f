// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status         string  `json:"status"`
	Uptime         float64 `json:"uptime_seconds"`
	BackendBreaker string  `json:"backend_breaker,omitempty"`
	SessionStore   string  `json:"session_store,omitempty"`
}

// HealthLive handles Kubernetes-style liveness checks
// Returns 200 OK if the process is alive, regardless of dependencies
// GET /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, HealthStatus{
		Status: "alive",
		Uptime: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports whether the console can serve requests. An open
// backend circuit breaker or an unreachable session store make it not
// ready.
// GET /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:         "ready",
		Uptime:         time.Since(h.startTime).Seconds(),
		BackendBreaker: h.client.BreakerState(),
		SessionStore:   "ok",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := h.auth.Store().Count(ctx); err != nil {
		status.SessionStore = "unavailable"
		status.Status = "not_ready"
	}
	if status.BackendBreaker == "open" {
		status.Status = "not_ready"
	}

	if status.Status != "ready" {
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service not ready", status)
		return
	}
	WriteSuccess(w, r, status)
}
