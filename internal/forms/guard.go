// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package forms

import (
	"errors"
	"strconv"
	"sync"
)

// ErrSubmitInProgress is returned by Begin while the same key is in flight.
var ErrSubmitInProgress = errors.New("forms: submit already in progress")

// SubmitGuard tracks in-flight submits by key.
type SubmitGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewSubmitGuard creates an empty guard.
func NewSubmitGuard() *SubmitGuard {
	return &SubmitGuard{inflight: make(map[string]struct{})}
}

// Begin claims key. The returned release must be called exactly once the
// submit has finished; calling it more than once is harmless.
func (g *SubmitGuard) Begin(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[key]; busy {
		return nil, ErrSubmitInProgress
	}
	g.inflight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, key)
			g.mu.Unlock()
		})
	}, nil
}

// InFlight reports whether key is currently claimed.
func (g *SubmitGuard) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inflight[key]
	return busy
}

// Len returns the number of in-flight submits.
func (g *SubmitGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}

// Key builds a guard key. id is 0 for creates.
func Key(sessionID, form string, id int64) string {
	return sessionID + "/" + form + "/" + strconv.FormatInt(id, 10)
}
