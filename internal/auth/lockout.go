// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/vendorbooking/internal/config"
	"github.com/tomtom215/vendorbooking/internal/logging"
)

// ErrAccountLocked is matched by errors.Is on a *LockedError.
var ErrAccountLocked = errors.New("account temporarily locked due to too many failed attempts")

// LockedError reports how long a username stays locked.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s (retry in %s)", ErrAccountLocked, e.Remaining.Round(time.Second))
}

func (e *LockedError) Unwrap() error { return ErrAccountLocked }

// LockoutConfig holds configuration for the login lockout.
type LockoutConfig struct {
	// MaxAttempts is the number of failed attempts before lockout.
	MaxAttempts int

	// LockoutDuration is the base lockout period. It doubles on each
	// subsequent lockout up to MaxLockoutDuration.
	LockoutDuration    time.Duration
	MaxLockoutDuration time.Duration
}

// DefaultLockoutConfig returns sensible defaults.
func DefaultLockoutConfig() *LockoutConfig {
	return &LockoutConfig{
		MaxAttempts:        5,
		LockoutDuration:    15 * time.Minute,
		MaxLockoutDuration: 24 * time.Hour,
	}
}

// LockoutConfigFrom reads the lockout settings from the security section.
// It returns nil when lockout is disabled.
func LockoutConfigFrom(sec *config.SecurityConfig) *LockoutConfig {
	if sec.LockoutAttempts <= 0 {
		return nil
	}
	cfg := DefaultLockoutConfig()
	cfg.MaxAttempts = sec.LockoutAttempts
	if sec.LockoutDuration > 0 {
		cfg.LockoutDuration = sec.LockoutDuration
	}
	return cfg
}

// lockoutEntry tracks failed login attempts for a username.
type lockoutEntry struct {
	failedAttempts int
	lastAttempt    time.Time
	lockoutCount   int
	lockedUntil    time.Time
}

// Lockout locks usernames after repeated failed logins. Usernames are
// compared case-insensitively.
type Lockout struct {
	config  LockoutConfig
	mu      sync.Mutex
	entries map[string]*lockoutEntry
	now     func() time.Time
}

// NewLockout creates a lockout tracker. A nil config uses the defaults.
func NewLockout(config *LockoutConfig) *Lockout {
	if config == nil {
		config = DefaultLockoutConfig()
	}
	return &Lockout{
		config:  *config,
		entries: make(map[string]*lockoutEntry),
		now:     time.Now,
	}
}

func lockoutKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Check returns a *LockedError while username is locked.
func (l *Lockout) Check(username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[lockoutKey(username)]
	if !ok {
		return nil
	}
	if remaining := entry.lockedUntil.Sub(l.now()); remaining > 0 {
		return &LockedError{Remaining: remaining}
	}
	return nil
}

// RecordFailure counts a failed login and returns a *LockedError when this
// attempt triggered a lockout.
func (l *Lockout) RecordFailure(username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockoutKey(username)
	entry, ok := l.entries[key]
	if !ok {
		entry = &lockoutEntry{}
		l.entries[key] = entry
	}

	now := l.now()
	if now.Before(entry.lockedUntil) {
		return &LockedError{Remaining: entry.lockedUntil.Sub(now)}
	}

	entry.failedAttempts++
	entry.lastAttempt = now
	if entry.failedAttempts < l.config.MaxAttempts {
		return nil
	}

	d := l.duration(entry.lockoutCount)
	entry.lockedUntil = now.Add(d)
	entry.lockoutCount++
	entry.failedAttempts = 0

	logging.Warn().
		Str("username", username).
		Dur("duration", d).
		Int("lockout_count", entry.lockoutCount).
		Msg("Account locked")
	return &LockedError{Remaining: d}
}

// duration computes the lockout period with exponential backoff.
func (l *Lockout) duration(lockoutCount int) time.Duration {
	d := l.config.LockoutDuration
	for i := 0; i < lockoutCount; i++ {
		d *= 2
		if d >= l.config.MaxLockoutDuration {
			return l.config.MaxLockoutDuration
		}
	}
	return d
}

// RecordSuccess clears the failure history for username.
func (l *Lockout) RecordSuccess(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, lockoutKey(username))
}

// Cleanup drops entries that are unlocked and idle for longer than the
// maximum lockout period.
func (l *Lockout) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	threshold := now.Add(-l.config.MaxLockoutDuration)
	removed := 0
	for key, entry := range l.entries {
		if now.After(entry.lockedUntil) && entry.lastAttempt.Before(threshold) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}
