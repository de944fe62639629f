// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/rbac"
)

type middlewareFixture struct {
	store   *MemorySessionStore
	jwt     *JWTManager
	mw      *SessionMiddleware
	session *Session
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	t.Helper()
	store := NewMemorySessionStore()
	jwtManager := testJWTManager(t)
	cfg := DefaultSessionMiddlewareConfig()
	cfg.CookieSecure = false

	s := NewSession(testUser(), time.Hour)
	s.SetPrivileges([]string{"carriers.view"}, false)
	if err := store.Create(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	return &middlewareFixture{
		store:   store,
		jwt:     jwtManager,
		mw:      NewSessionMiddleware(store, jwtManager, cfg, nil),
		session: s,
	}
}

func (f *middlewareFixture) serve(req *http.Request, inspect func(r *http.Request)) *httptest.ResponseRecorder {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	f.mw.Authenticate(f.mw.RequireAuth(inner)).ServeHTTP(rec, req)
	return rec
}

func TestSessionMiddlewareCookie(t *testing.T) {
	f := newMiddlewareFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/carriers", nil)
	req.AddCookie(&http.Cookie{Name: "vbt_session", Value: f.session.ID})

	var gate *rbac.Gate
	var user string
	rec := f.serve(req, func(r *http.Request) {
		gate = rbac.FromContext(r.Context())
		user = logging.UserFromContext(r.Context())
		if SessionFromContext(r.Context()) == nil {
			t.Error("no session in context")
		}
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gate == nil || !gate.HasAccess("carriers.view") {
		t.Error("gate missing or without privileges")
	}
	if user != "ops" {
		t.Errorf("context user = %q", user)
	}
}

func TestSessionMiddlewareBearer(t *testing.T) {
	f := newMiddlewareFixture(t)
	token, err := f.jwt.GenerateToken(f.session)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/carriers", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	if rec := f.serve(req, nil); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestSessionMiddlewareAnonymous(t *testing.T) {
	f := newMiddlewareFixture(t)
	rec := f.serve(httptest.NewRequest(http.MethodGet, "/api/v1/carriers", nil), nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), rbac.CodeUnauthorized) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSessionMiddlewareStaleCookie(t *testing.T) {
	f := newMiddlewareFixture(t)
	if err := f.store.Delete(context.Background(), f.session.ID); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/carriers", nil)
	req.AddCookie(&http.Cookie{Name: "vbt_session", Value: f.session.ID})

	rec := f.serve(req, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), CodeSessionExpired) {
		t.Errorf("body = %s, want %s", rec.Body.String(), CodeSessionExpired)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "vbt_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("stale cookie not cleared")
	}
}

func TestSessionMiddlewareBadBearerIsStale(t *testing.T) {
	f := newMiddlewareFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/carriers", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	rec := f.serve(req, nil)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), CodeSessionExpired) {
		t.Errorf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestSessionMiddlewareSlidingExpiry(t *testing.T) {
	f := newMiddlewareFixture(t)
	short := NewSession(testUser(), time.Minute)
	if err := f.store.Create(context.Background(), short); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/carriers", nil)
	req.AddCookie(&http.Cookie{Name: "vbt_session", Value: short.ID})
	f.serve(req, nil)

	got, err := f.store.Get(context.Background(), short.ID)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(got.ExpiresAt) < 7*time.Hour {
		t.Errorf("ExpiresAt = %v, want extended to the 8h TTL", got.ExpiresAt)
	}
}

func TestSetSessionCookie(t *testing.T) {
	f := newMiddlewareFixture(t)
	rec := httptest.NewRecorder()
	f.mw.SetSessionCookie(rec, "abc")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "vbt_session" || c.Value != "abc" || !c.HttpOnly || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie = %+v", c)
	}
}
