// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/vendorbooking/internal/models"
)

func TestMemoryTokenSourceKeepsRefreshToken(t *testing.T) {
	t.Parallel()

	ts := NewMemoryTokenSource(models.TokenPair{AccessToken: "a1", RefreshToken: "r1"},
		func(_ context.Context, rt string) (models.TokenPair, error) {
			if rt != "r1" {
				t.Errorf("refresh token = %q", rt)
			}
			return models.TokenPair{AccessToken: "a2"}, nil
		}, TokenHooks{})

	tok, err := ts.Refresh(context.Background(), "a1")
	if err != nil || tok != "a2" {
		t.Fatalf("Refresh = %q, %v", tok, err)
	}
	if ts.Pair().RefreshToken != "r1" {
		t.Errorf("refresh token dropped: %+v", ts.Pair())
	}
}

func TestMemoryTokenSourceSkipsRefreshForReplacedToken(t *testing.T) {
	t.Parallel()

	called := false
	ts := NewMemoryTokenSource(models.TokenPair{AccessToken: "current", RefreshToken: "r"},
		func(context.Context, string) (models.TokenPair, error) {
			called = true
			return models.TokenPair{}, nil
		}, TokenHooks{})

	tok, err := ts.Refresh(context.Background(), "stale")
	if err != nil || tok != "current" {
		t.Fatalf("Refresh = %q, %v", tok, err)
	}
	if called {
		t.Error("refresh should not run when the stale token was already replaced")
	}
}

func TestMemoryTokenSourceInvalidateOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	ts := NewMemoryTokenSource(models.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil, TokenHooks{
		OnInvalidate: func(context.Context) { calls++ },
	})
	ts.Invalidate(context.Background())
	ts.Invalidate(context.Background())

	if calls != 1 {
		t.Errorf("OnInvalidate calls = %d, want 1", calls)
	}
	if _, err := ts.Refresh(context.Background(), "a"); !errors.Is(err, ErrNoToken) {
		t.Errorf("Refresh after invalidate err = %v", err)
	}
}

func TestMemoryTokenSourcePersistFailure(t *testing.T) {
	t.Parallel()

	ts := NewMemoryTokenSource(models.TokenPair{AccessToken: "a", RefreshToken: "r"},
		func(context.Context, string) (models.TokenPair, error) {
			return models.TokenPair{AccessToken: "b"}, nil
		}, TokenHooks{
			OnRefresh: func(context.Context, models.TokenPair) error { return errors.New("disk full") },
		})

	if _, err := ts.Refresh(context.Background(), "a"); err == nil {
		t.Fatal("expected persist error")
	}
}
