// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

type jsonResponder struct{}

func (jsonResponder) Respond(w http.ResponseWriter, _ *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (jsonResponder) Fail(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message})
}

func TestPolicyHandlers_ListRoles(t *testing.T) {
	t.Parallel()

	h := NewPolicyHandlers(newTestEnforcer(t), jsonResponder{})
	rec := httptest.NewRecorder()
	h.ListRoles(rec, httptest.NewRequest(http.MethodGet, "/api/v1/authz/roles", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Roles       []RoleInfo `json:"roles"`
		DefaultRole string     `json:"default_role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.DefaultRole != "viewer" || len(body.Roles) < 5 {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestPolicyHandlers_GetRole(t *testing.T) {
	t.Parallel()

	h := NewPolicyHandlers(newTestEnforcer(t), jsonResponder{})

	get := func(role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/authz/roles/"+role, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("role", role)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()
		h.GetRole(rec, req)
		return rec
	}

	rec := get("planner")
	if rec.Code != http.StatusOK {
		t.Fatalf("planner status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "shipment_order.import") {
		t.Errorf("planner body missing import privilege: %s", rec.Body.String())
	}

	if rec := get("ghost"); rec.Code != http.StatusNotFound {
		t.Errorf("ghost status = %d", rec.Code)
	}
}

func TestPolicyHandlers_Check(t *testing.T) {
	t.Parallel()

	h := NewPolicyHandlers(newTestEnforcer(t), jsonResponder{})

	tests := []struct {
		name    string
		body    string
		status  int
		allowed bool
	}{
		{"allowed", `{"role":"planner","privilege":"shipment_order.create"}`, http.StatusOK, true},
		{"denied", `{"role":"viewer","privilege":"carrier.delete"}`, http.StatusOK, false},
		{"superuser", `{"role":"superuser","privilege":"anything.goes"}`, http.StatusOK, true},
		{"malformed privilege", `{"role":"viewer","privilege":"carrier"}`, http.StatusBadRequest, false},
		{"missing fields", `{"role":"viewer"}`, http.StatusBadRequest, false},
		{"bad json", `{`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Check(rec, httptest.NewRequest(http.MethodPost, "/api/v1/authz/check", strings.NewReader(tt.body)))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var body struct {
				Allowed bool `json:"allowed"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Allowed != tt.allowed {
				t.Errorf("allowed = %v, want %v", body.Allowed, tt.allowed)
			}
		})
	}
}

func TestPolicyHandlers_GetPolicies(t *testing.T) {
	t.Parallel()

	h := NewPolicyHandlers(newTestEnforcer(t), jsonResponder{})
	rec := httptest.NewRecorder()
	h.GetPolicies(rec, httptest.NewRequest(http.MethodGet, "/api/v1/authz/policies", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"inherits":"viewer"`) {
		t.Errorf("groupings missing: %s", rec.Body.String())
	}
}
