// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/vendorbooking/internal/auth"
	"github.com/tomtom215/vendorbooking/internal/rbac"
)

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.sendJSON(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "  ops ", Password: "secret"})
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.status, resp.body)
	}
	var info SessionInfo
	resp.decode(t, &info)

	if info.Token == "" || info.CSRFToken == "" {
		t.Errorf("token = %q, csrf = %q", info.Token, info.CSRFToken)
	}
	if info.User == nil || info.User.Username != "ops" {
		t.Errorf("user = %+v", info.User)
	}
	if info.Superuser {
		t.Error("ops must not be superuser")
	}
	if len(info.Privileges) != len(operatorPrivileges) {
		t.Errorf("privileges = %v", info.Privileges)
	}

	cookie := resp.header.Get("Set-Cookie")
	if !strings.HasPrefix(cookie, "vbt_session=") || !strings.Contains(cookie, "HttpOnly") {
		t.Errorf("Set-Cookie = %q", cookie)
	}
}

func TestLoginFailures(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		req        LoginRequest
		wantStatus int
		wantCode   string
	}{
		{"wrong password", LoginRequest{Username: "ops", Password: "nope"}, http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{"unknown user", LoginRequest{Username: "ghost", Password: "secret"}, http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{"blank username", LoginRequest{Username: "   ", Password: "secret"}, http.StatusUnprocessableEntity, ErrCodeValidationFailed},
		{"missing password", LoginRequest{Username: "ops"}, http.StatusUnprocessableEntity, ErrCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.sendJSON(t, http.MethodPost, "/api/v1/auth/login", "", tt.req)
			if resp.status != tt.wantStatus || resp.code() != tt.wantCode {
				t.Errorf("got %d %s, want %d %s", resp.status, resp.code(), tt.wantStatus, tt.wantCode)
			}
		})
	}

	resp := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", bytes.NewReader([]byte("{")), "application/json")
	if resp.status != http.StatusBadRequest {
		t.Errorf("malformed body status = %d", resp.status)
	}
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "viewer")

	resp := ts.get(t, "/api/v1/auth/me", token)
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.status, resp.body)
	}
	var info SessionInfo
	resp.decode(t, &info)
	if info.Token != "" {
		t.Error("me must not repeat the bearer token")
	}
	if info.User.Username != "viewer" || len(info.Privileges) != 1 || info.Privileges[0] != "carrier.view" {
		t.Errorf("info = %+v", info)
	}

	accessible := map[string]bool{}
	for _, m := range info.Modules {
		accessible[m.Module.ID] = m.Accessible
	}
	if !accessible[rbac.ModuleCarrier] || accessible[rbac.ModuleShipmentOrder] {
		t.Errorf("modules = %+v", info.Modules)
	}

	refreshed := ts.get(t, "/api/v1/auth/me?refresh=true", token)
	if refreshed.status != http.StatusOK {
		t.Errorf("refresh status = %d, body = %s", refreshed.status, refreshed.body)
	}
}

func TestRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/auth/me", "/api/v1/carriers", "/api/v1/dashboard"} {
		resp := ts.get(t, path, "")
		if resp.status != http.StatusUnauthorized || resp.code() != rbac.CodeUnauthorized {
			t.Errorf("%s: got %d %s", path, resp.status, resp.code())
		}
	}

	resp := ts.get(t, "/api/v1/carriers", "not-a-jwt")
	if resp.status != http.StatusUnauthorized {
		t.Errorf("bad token status = %d", resp.status)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "ops")

	resp := ts.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil, "")
	if resp.status != http.StatusOK {
		t.Fatalf("logout status = %d, body = %s", resp.status, resp.body)
	}
	if len(ts.fake.CapturesFor(http.MethodPost, "/auth/logout")) != 1 {
		t.Error("backend logout not called")
	}

	after := ts.get(t, "/api/v1/carriers", token)
	if after.status != http.StatusUnauthorized || after.code() != auth.CodeSessionExpired {
		t.Errorf("after logout: got %d %s", after.status, after.code())
	}

	// Logging out twice still clears the cookie.
	again := ts.do(t, http.MethodPost, "/api/v1/auth/logout", "", nil, "")
	if again.status != http.StatusOK {
		t.Errorf("anonymous logout status = %d", again.status)
	}
}

func TestCan(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "viewer")

	tests := []struct {
		privilege string
		want      bool
	}{
		{"carrier.view", true},
		{"carrier.delete", false},
		{"shipment_order.view", false},
	}
	for _, tt := range tests {
		resp := ts.get(t, "/api/v1/auth/can?privilege="+tt.privilege, token)
		var got CanResponse
		resp.decode(t, &got)
		if got.Allowed != tt.want {
			t.Errorf("can %s = %v, want %v", tt.privilege, got.Allowed, tt.want)
		}
	}

	resp := ts.get(t, "/api/v1/auth/can", token)
	if resp.status != http.StatusBadRequest {
		t.Errorf("missing privilege status = %d", resp.status)
	}
}

func TestModules(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "admin")

	resp := ts.get(t, "/api/v1/modules", token)
	var modules []rbac.ModuleAccess
	resp.decode(t, &modules)
	if len(modules) != len(rbac.Modules) {
		t.Fatalf("modules = %d, want %d", len(modules), len(rbac.Modules))
	}
	for _, m := range modules {
		if !m.Accessible {
			t.Errorf("superuser cannot access %s", m.Module.ID)
		}
	}
}

func TestCSRFRequiredForCookieSessions(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.sendJSON(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "ops", Password: "secret"})
	var info SessionInfo
	resp.decode(t, &info)
	var cookie *http.Cookie
	for _, c := range (&http.Response{Header: resp.header}).Cookies() {
		if c.Name == "vbt_session" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie")
	}

	post := func(csrf string) int {
		req, _ := http.NewRequest(http.MethodPost, ts.server.URL+"/api/v1/carriers", strings.NewReader(`{"name":"Maersk","code":"MAEU"}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		if csrf != "" {
			req.Header.Set(auth.CSRFHeader, csrf)
		}
		r, err := ts.server.Client().Do(req)
		if err != nil {
			t.Fatal(err)
		}
		r.Body.Close()
		return r.StatusCode
	}

	if got := post(""); got != http.StatusForbidden {
		t.Errorf("without token: %d, want 403", got)
	}
	if got := post("forged"); got != http.StatusForbidden {
		t.Errorf("forged token: %d, want 403", got)
	}
	if got := post(info.CSRFToken); got != http.StatusCreated {
		t.Errorf("with token: %d, want 201", got)
	}
}
