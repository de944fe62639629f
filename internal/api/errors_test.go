// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vendorbooking/internal/auth"
	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/excel"
	"github.com/tomtom215/vendorbooking/internal/forms"
	"github.com/tomtom215/vendorbooking/internal/rbac"
	"github.com/tomtom215/vendorbooking/internal/validation"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	verr := &validation.RequestValidationError{}
	verr.Add("name", "Name is required")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		endSession bool
		retryAfter bool
	}{
		{"validation", verr, http.StatusUnprocessableEntity, ErrCodeValidationFailed, false, false},
		{"locked", &auth.LockedError{Remaining: 30 * time.Second}, http.StatusTooManyRequests, ErrCodeAccountLocked, false, true},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeInvalidCredentials, false, false},
		{"session expired", auth.ErrSessionExpired, http.StatusUnauthorized, ErrCodeSessionExpired, true, false},
		{"session gone", fmt.Errorf("load: %w", auth.ErrSessionNotFound), http.StatusUnauthorized, ErrCodeSessionExpired, true, false},
		{"backend logout", backend.ErrLoggedOut, http.StatusUnauthorized, ErrCodeSessionExpired, true, false},
		{"double submit", forms.ErrSubmitInProgress, http.StatusConflict, ErrCodeSubmitInProgress, false, false},
		{"privileges loading", rbac.ErrNotReady, http.StatusServiceUnavailable, rbac.CodeLoading, false, true},
		{"bad id", ErrInvalidID, http.StatusBadRequest, ErrCodeBadRequest, false, false},
		{"bad header", excel.ErrHeaderMismatch, http.StatusBadRequest, ErrCodeInvalidFile, false, false},
		{"backend timeout", &backend.Error{Kind: backend.KindTimeout}, http.StatusGatewayTimeout, ErrCodeBackendTimeout, false, false},
		{"backend down", &backend.Error{Kind: backend.KindNetwork}, http.StatusBadGateway, ErrCodeBackendError, false, false},
		{"backend 500", &backend.Error{Kind: backend.KindServer, Status: 500}, http.StatusBadGateway, ErrCodeBackendError, false, false},
		{"breaker open", &backend.Error{Kind: backend.KindUnavailable}, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, false, true},
		{"backend 401", &backend.Error{Kind: backend.KindUnauthorized, Status: 401}, http.StatusUnauthorized, ErrCodeSessionExpired, true, false},
		{"backend 403", &backend.Error{Kind: backend.KindForbidden, Status: 403}, http.StatusForbidden, ErrCodeForbidden, false, false},
		{"backend 404", &backend.Error{Kind: backend.KindNotFound, Status: 404}, http.StatusNotFound, ErrCodeNotFound, false, false},
		{"backend 409", &backend.Error{Kind: backend.KindConflict, Status: 409}, http.StatusConflict, ErrCodeConflict, false, false},
		{"backend 429", &backend.Error{Kind: backend.KindRateLimited, Status: 429}, http.StatusTooManyRequests, ErrCodeTooManyRequests, false, true},
		{"canceled", context.Canceled, http.StatusRequestTimeout, ErrCodeRequestCanceled, false, false},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := Classify(tt.err)
			if f.Status != tt.wantStatus || f.Code != tt.wantCode {
				t.Errorf("Classify() = %d %s, want %d %s", f.Status, f.Code, tt.wantStatus, tt.wantCode)
			}
			if f.EndSession != tt.endSession {
				t.Errorf("EndSession = %v, want %v", f.EndSession, tt.endSession)
			}
			if (f.RetryAfter > 0) != tt.retryAfter {
				t.Errorf("RetryAfter = %d", f.RetryAfter)
			}
			if f.Message == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestClassifyBackendFieldErrors(t *testing.T) {
	t.Parallel()

	err := &backend.Error{
		Kind:   backend.KindValidation,
		Status: http.StatusUnprocessableEntity,
		Fields: map[string][]string{"code": {"This code is already in use.", "second"}},
	}
	f := Classify(fmt.Errorf("create carrier: %w", err))
	if f.Status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", f.Status)
	}
	fields := f.Details.(map[string]interface{})["fields"].(map[string]string)
	if fields["code"] != "This code is already in use." {
		t.Errorf("fields = %v", fields)
	}
}

func TestResponseEnvelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		write       func(w http.ResponseWriter, r *http.Request)
		wantStatus  int
		wantSuccess bool
		wantCode    string
	}{
		{"success", func(w http.ResponseWriter, r *http.Request) { WriteSuccess(w, r, map[string]int{"n": 1}) }, http.StatusOK, true, ""},
		{"created", func(w http.ResponseWriter, r *http.Request) { NewResponseWriter(w, r).Created("x") }, http.StatusCreated, true, ""},
		{"not found", func(w http.ResponseWriter, r *http.Request) { WriteNotFound(w, r, "gone") }, http.StatusNotFound, false, ErrCodeNotFound},
		{"deny", func(w http.ResponseWriter, r *http.Request) {
			WriteDeny(w, r, http.StatusForbidden, rbac.CodeForbidden, "no")
		}, http.StatusForbidden, false, rbac.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			tt.write(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("Content-Type = %q", ct)
			}
			var resp testResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Success != tt.wantSuccess || resp.code() != tt.wantCode {
				t.Errorf("envelope = %s", rec.Body.String())
			}
			if resp.Meta == nil || resp.Meta.Timestamp.IsZero() {
				t.Errorf("meta = %+v", resp.Meta)
			}
		})
	}
}

func TestValidationErrorShape(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewResponseWriter(rec, httptest.NewRequest(http.MethodPost, "/", nil)).ValidationError("Some fields are invalid.", map[string]string{"name": "Name is required"})

	var resp testResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnprocessableEntity || resp.code() != ErrCodeValidationFailed {
		t.Fatalf("got %d %s", rec.Code, resp.code())
	}
	fields := resp.Error.Details.(map[string]interface{})["fields"].(map[string]interface{})
	if fields["name"] != "Name is required" {
		t.Errorf("details = %v", resp.Error.Details)
	}
}
