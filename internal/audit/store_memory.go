// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the newest maxLen events in memory. Events are lost on
// restart.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
	maxLen int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore holds up to maxLen events (default 10000).
func NewMemoryStore(maxLen int) *MemoryStore {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &MemoryStore{maxLen: maxLen}
}

// Save appends event, dropping the oldest tenth when full.
func (s *MemoryStore) Save(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) >= s.maxLen {
		drop := s.maxLen / 10
		if drop < 1 {
			drop = 1
		}
		s.events = append(s.events[:0:0], s.events[drop:]...)
	}
	s.events = append(s.events, *event)
	return nil
}

// Query walks newest first.
func (s *MemoryStore) Query(_ context.Context, filter QueryFilter) ([]Event, error) {
	filter = NormalizeFilter(filter)

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []Event{}
	skipped := 0
	for i := len(s.events) - 1; i >= 0; i-- {
		if !filter.Matches(&s.events[i]) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		results = append(results, s.events[i])
		if len(results) >= filter.Limit {
			break
		}
	}
	return results, nil
}

// Count ignores Limit and Offset.
func (s *MemoryStore) Count(_ context.Context, filter QueryFilter) (int64, error) {
	filter = NormalizeFilter(filter)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for i := range s.events {
		if filter.Matches(&s.events[i]) {
			n++
		}
	}
	return n, nil
}

// Delete drops events older than olderThan.
func (s *MemoryStore) Delete(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var deleted int64
	for _, e := range s.events {
		if e.Timestamp.Before(olderThan) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return deleted, nil
}

// Stats summarizes the stored events.
func (s *MemoryStore) Stats(_ context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := newStats()
	for i := range s.events {
		stats.add(&s.events[i])
	}
	return stats, nil
}

// Len returns the number of stored events.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
