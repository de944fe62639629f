// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/vendorbooking/internal/config"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLockout(attempts int, base time.Duration) (*Lockout, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC)}
	l := NewLockout(&LockoutConfig{MaxAttempts: attempts, LockoutDuration: base, MaxLockoutDuration: time.Hour})
	l.now = clock.now
	return l, clock
}

func TestLockoutTriggersAfterMaxAttempts(t *testing.T) {
	l, clock := newTestLockout(3, time.Minute)

	for i := 0; i < 2; i++ {
		if err := l.RecordFailure("ops"); err != nil {
			t.Fatalf("failure %d locked early: %v", i+1, err)
		}
	}
	err := l.RecordFailure("OPS ")
	var locked *LockedError
	if !errors.As(err, &locked) || locked.Remaining != time.Minute {
		t.Fatalf("third failure = %v, want 1m lock", err)
	}
	if !errors.Is(l.Check("ops"), ErrAccountLocked) {
		t.Error("Check did not report lock")
	}

	clock.advance(time.Minute + time.Second)
	if err := l.Check("ops"); err != nil {
		t.Errorf("still locked after expiry: %v", err)
	}
}

func TestLockoutBackoffDoublesUpToCap(t *testing.T) {
	l, clock := newTestLockout(1, 20*time.Minute)

	want := []time.Duration{20 * time.Minute, 40 * time.Minute, time.Hour, time.Hour}
	for i, w := range want {
		var locked *LockedError
		if err := l.RecordFailure("ops"); !errors.As(err, &locked) || locked.Remaining != w {
			t.Fatalf("lockout %d = %v, want %v", i+1, err, w)
		}
		clock.advance(w + time.Second)
	}
}

func TestLockoutSuccessResets(t *testing.T) {
	l, _ := newTestLockout(2, time.Minute)

	if err := l.RecordFailure("ops"); err != nil {
		t.Fatal(err)
	}
	l.RecordSuccess("ops")
	if err := l.RecordFailure("ops"); err != nil {
		t.Errorf("failure after success locked: %v", err)
	}
}

func TestLockoutCleanup(t *testing.T) {
	l, clock := newTestLockout(5, time.Minute)
	_ = l.RecordFailure("ops")
	_ = l.RecordFailure("dock")

	if n := l.Cleanup(); n != 0 {
		t.Errorf("Cleanup removed %d fresh entries", n)
	}
	clock.advance(2 * time.Hour)
	if n := l.Cleanup(); n != 2 {
		t.Errorf("Cleanup = %d, want 2", n)
	}
}

func TestLockoutConfigFrom(t *testing.T) {
	if LockoutConfigFrom(&config.SecurityConfig{}) != nil {
		t.Error("zero attempts should disable lockout")
	}
	cfg := LockoutConfigFrom(&config.SecurityConfig{LockoutAttempts: 3, LockoutDuration: 5 * time.Minute})
	if cfg.MaxAttempts != 3 || cfg.LockoutDuration != 5*time.Minute || cfg.MaxLockoutDuration != 24*time.Hour {
		t.Errorf("LockoutConfigFrom = %+v", cfg)
	}
}
