// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCSRFProtect(t *testing.T) {
	csrf := NewCSRFMiddleware(testSecret, []string{"/api/v1/auth/login"}, nil)
	session := NewSession(testUser(), time.Hour)
	handler := csrf.Protect(okHandler)

	tests := []struct {
		name    string
		method  string
		path    string
		session bool
		header  map[string]string
		want    int
	}{
		{"safe method", http.MethodGet, "/api/v1/carriers", true, nil, http.StatusOK},
		{"exempt path", http.MethodPost, "/api/v1/auth/login", true, nil, http.StatusOK},
		{"anonymous", http.MethodPost, "/api/v1/carriers", false, nil, http.StatusOK},
		{"bearer client", http.MethodPost, "/api/v1/carriers", true, map[string]string{"Authorization": "Bearer x"}, http.StatusOK},
		{"missing token", http.MethodPost, "/api/v1/carriers", true, nil, http.StatusForbidden},
		{"wrong token", http.MethodDelete, "/api/v1/carriers/1", true, map[string]string{CSRFHeader: "forged"}, http.StatusForbidden},
		{"valid token", http.MethodPut, "/api/v1/carriers/1", true, map[string]string{CSRFHeader: csrf.Token(session)}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if tt.session {
				req = req.WithContext(ContextWithSession(req.Context(), session))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestCSRFTokenBoundToSession(t *testing.T) {
	csrf := NewCSRFMiddleware(testSecret, nil, nil)
	a := NewSession(testUser(), time.Hour)
	b := NewSession(testUser(), time.Hour)

	if csrf.Token(a) == csrf.Token(b) {
		t.Error("different sessions share a CSRF token")
	}
	if csrf.Token(a) != csrf.Token(a) {
		t.Error("token not deterministic")
	}
}
