// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"net/http"
	"testing"

	"github.com/tomtom215/vendorbooking/internal/middleware"
	"github.com/tomtom215/vendorbooking/internal/rbac"
)

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	live := ts.get(t, "/api/v1/health/live", "")
	var status HealthStatus
	live.decode(t, &status)
	if live.status != http.StatusOK || status.Status != "alive" {
		t.Errorf("live: %d %+v", live.status, status)
	}

	ready := ts.get(t, "/api/v1/health/ready", "")
	ready.decode(t, &status)
	if ready.status != http.StatusOK || status.Status != "ready" || status.BackendBreaker != "disabled" || status.SessionStore != "ok" {
		t.Errorf("ready: %d %+v", ready.status, status)
	}
}

func TestAdminRequiresSuperuser(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "ops")

	for _, path := range []string{"/api/v1/admin/status", "/api/v1/admin/performance"} {
		resp := ts.get(t, path, token)
		if resp.status != http.StatusForbidden || resp.code() != rbac.CodeForbidden {
			t.Errorf("%s: got %d %s", path, resp.status, resp.code())
		}
	}
}

func TestAdminStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.seedMasterData(t)
	ops := ts.login(t, "ops")
	admin := ts.login(t, "admin")

	// Fill the cache with one list.
	if resp := ts.get(t, "/api/v1/carriers", ops); resp.status != http.StatusOK {
		t.Fatalf("list status = %d", resp.status)
	}

	resp := ts.get(t, "/api/v1/admin/status", admin)
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.status, resp.body)
	}
	var status struct {
		Sessions        int    `json:"sessions"`
		TokenSources    int    `json:"token_sources"`
		SubmitsInFlight int    `json:"submits_in_flight"`
		BackendBreaker  string `json:"backend_breaker"`
		Cache           struct {
			Entries int   `json:"entries"`
			Misses  int64 `json:"misses"`
		} `json:"cache"`
	}
	resp.decode(t, &status)

	if status.Sessions != 2 {
		t.Errorf("sessions = %d, want 2", status.Sessions)
	}
	if status.BackendBreaker != "disabled" || status.SubmitsInFlight != 0 {
		t.Errorf("status = %+v", status)
	}
	if status.Cache.Entries == 0 || status.Cache.Misses == 0 {
		t.Errorf("cache = %+v", status.Cache)
	}
}

func TestClearCache(t *testing.T) {
	ts := newTestServer(t)
	ts.seedMasterData(t)
	ops := ts.login(t, "ops")
	admin := ts.login(t, "admin")

	ts.get(t, "/api/v1/carriers", ops)
	if ts.cache.Len() == 0 {
		t.Fatal("list was not cached")
	}

	resp := ts.do(t, http.MethodDelete, "/api/v1/admin/cache", admin, nil, "")
	var got map[string]int
	resp.decode(t, &got)
	if resp.status != http.StatusOK || got["cleared"] == 0 {
		t.Errorf("clear: %d %v", resp.status, got)
	}
	if ts.cache.Len() != 0 {
		t.Errorf("entries left = %d", ts.cache.Len())
	}
}

func TestPerformance(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin")
	ts.get(t, "/api/v1/health/live", "")

	resp := ts.get(t, "/api/v1/admin/performance?recent=5", admin)
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.status, resp.body)
	}
	var perf struct {
		Endpoints []middleware.EndpointStats  `json:"endpoints"`
		Recent    []middleware.RequestMetrics `json:"recent"`
	}
	resp.decode(t, &perf)
	if len(perf.Endpoints) == 0 {
		t.Error("no endpoint stats")
	}
	if len(perf.Recent) == 0 || len(perf.Recent) > 5 {
		t.Errorf("recent = %d", len(perf.Recent))
	}
}

func TestNotFoundUsesEnvelope(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.get(t, "/api/v1/nope", "")
	if resp.status == http.StatusOK || resp.Success {
		t.Errorf("got %d %s", resp.status, resp.body)
	}

	// The authz routes are not mounted without an enforcer.
	admin := ts.login(t, "admin")
	resp = ts.get(t, "/api/v1/authz/roles", admin)
	if resp.status != http.StatusNotFound {
		t.Errorf("authz without enforcer: %d", resp.status)
	}
}
