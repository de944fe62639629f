// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/vendorbooking/internal/models"
)

func testUser() *models.User {
	return &models.User{ID: 42, Username: "ops", Email: "ops@example.com", FullName: "Ops Desk", Role: "Operator"}
}

// runSessionStoreTests exercises a SessionStore implementation.
func runSessionStoreTests(t *testing.T, newStore func(t *testing.T) SessionStore) {
	t.Run("CreateGet", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		s := NewSession(testUser(), time.Hour)
		s.SetPrivileges([]string{"carriers.view"}, false)
		if err := store.Create(ctx, s); err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := store.Get(ctx, s.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Username != "ops" || got.UserID != "42" || !got.Loaded {
			t.Errorf("Get = %+v", got)
		}
		if len(got.Privileges) != 1 || got.Privileges[0] != "carriers.view" {
			t.Errorf("Privileges = %v", got.Privileges)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Get = %v, want ErrSessionNotFound", err)
		}
	})

	t.Run("GetExpired", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		s := NewSession(testUser(), -time.Minute)
		if err := store.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
		if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrSessionExpired) {
			t.Errorf("Get = %v, want ErrSessionExpired", err)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		store := newStore(t)
		s := NewSession(testUser(), time.Hour)
		if err := store.Update(context.Background(), s); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Update = %v, want ErrSessionNotFound", err)
		}
	})

	t.Run("UpdateReplacesTokens", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		s := NewSession(testUser(), time.Hour)
		s.Tokens = "first"
		if err := store.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
		s.Tokens = "second"
		if err := store.Update(ctx, s); err != nil {
			t.Fatalf("Update: %v", err)
		}
		got, err := store.Get(ctx, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Tokens != "second" {
			t.Errorf("Tokens = %q, want second", got.Tokens)
		}
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		s := NewSession(testUser(), time.Hour)
		if err := store.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
		if err := store.Delete(ctx, s.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := store.Delete(ctx, s.ID); err != nil {
			t.Fatalf("second Delete: %v", err)
		}
		if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Get after Delete = %v", err)
		}
	})

	t.Run("DeleteByUserID", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			if err := store.Create(ctx, NewSession(testUser(), time.Hour)); err != nil {
				t.Fatal(err)
			}
		}
		other := NewSession(&models.User{ID: 7, Username: "other"}, time.Hour)
		if err := store.Create(ctx, other); err != nil {
			t.Fatal(err)
		}

		n, err := store.DeleteByUserID(ctx, "42")
		if err != nil {
			t.Fatalf("DeleteByUserID: %v", err)
		}
		if n != 3 {
			t.Errorf("deleted = %d, want 3", n)
		}
		if _, err := store.Get(ctx, other.ID); err != nil {
			t.Errorf("other session gone: %v", err)
		}
	})

	t.Run("TouchExtends", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		s := NewSession(testUser(), time.Minute)
		if err := store.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
		want := time.Now().Add(2 * time.Hour)
		if err := store.Touch(ctx, s.ID, want); err != nil {
			t.Fatalf("Touch: %v", err)
		}
		got, err := store.Get(ctx, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.ExpiresAt.Sub(want).Abs() > time.Second {
			t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, want)
		}
		if err := store.Touch(ctx, "nope", want); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Touch missing = %v", err)
		}
	})

	t.Run("CleanupExpired", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		live := NewSession(testUser(), time.Hour)
		dead := NewSession(testUser(), -time.Minute)
		for _, s := range []*Session{live, dead} {
			if err := store.Create(ctx, s); err != nil {
				t.Fatal(err)
			}
		}

		n, err := store.CleanupExpired(ctx)
		if err != nil {
			t.Fatalf("CleanupExpired: %v", err)
		}
		if n != 1 {
			t.Errorf("cleaned = %d, want 1", n)
		}
		count, err := store.Count(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("Count = %d, want 1", count)
		}
	})
}

func TestMemorySessionStore(t *testing.T) {
	runSessionStoreTests(t, func(*testing.T) SessionStore { return NewMemorySessionStore() })
}

func TestMemorySessionStoreReturnsCopies(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	s := NewSession(testUser(), time.Hour)
	s.SetPrivileges([]string{"ports.view"}, false)
	if err := store.Create(ctx, s); err != nil {
		t.Fatal(err)
	}

	got, _ := store.Get(ctx, s.ID)
	got.Privileges[0] = "mutated"
	again, _ := store.Get(ctx, s.ID)
	if again.Privileges[0] != "ports.view" {
		t.Errorf("store shares privilege slice with callers")
	}
}

func TestSessionGateLoading(t *testing.T) {
	s := NewSession(testUser(), time.Hour)
	if s.Gate().Ready() {
		t.Fatal("gate ready before privileges were loaded")
	}

	s.SetPrivileges([]string{"carriers.view"}, false)
	g := s.Gate()
	if !g.Ready() {
		t.Fatal("gate not ready after SetPrivileges")
	}
	if !g.HasAccess("carriers.view") || g.HasAccess("carriers.delete") {
		t.Errorf("gate privileges = %v", g.Privileges())
	}
}

func TestSessionUser(t *testing.T) {
	s := NewSession(testUser(), time.Hour)
	s.SetPrivileges([]string{"a.view"}, true)

	u := s.User()
	if u.ID != 42 || u.Username != "ops" || !u.IsSuperuser || len(u.Privileges) != 1 {
		t.Errorf("User() = %+v", u)
	}
}

func TestNewSessionIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSession(testUser(), time.Hour).ID
		if seen[id] {
			t.Fatalf("duplicate session ID %q", id)
		}
		seen[id] = true
	}
}
