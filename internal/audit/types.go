// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package audit

import (
	"context"
	"strings"
	"time"
)

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Severity of an event. Failures and forced logouts are warnings.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Event is one stored audit record.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Type is the console event name: login, logout, forced_logout,
	// token_refresh, access_denied, record_create, shipment_import, ...
	Type     string   `json:"type"`
	Outcome  Outcome  `json:"outcome"`
	Severity Severity `json:"severity"`

	Username  string `json:"username,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	Reason    string `json:"reason,omitempty"`

	Details map[string]string `json:"details,omitempty"`
}

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event *Event) error

	// Query returns matching events, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)

	Count(ctx context.Context, filter QueryFilter) (int64, error)

	// Delete removes events older than olderThan and returns how many.
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}

// QueryFilter narrows a Query. Zero fields match everything.
type QueryFilter struct {
	Types    []string   `json:"types,omitempty"`
	Outcome  Outcome    `json:"outcome,omitempty"`
	Username string     `json:"username,omitempty"`
	Since    *time.Time `json:"since,omitempty"`
	Until    *time.Time `json:"until,omitempty"`

	// Search matches type, reason and detail values, case-insensitively.
	Search string `json:"search,omitempty"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Limits applied by NormalizeFilter.
const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 1000
)

// NormalizeFilter clamps Limit and Offset.
func NormalizeFilter(f QueryFilter) QueryFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultQueryLimit
	}
	if f.Limit > MaxQueryLimit {
		f.Limit = MaxQueryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Search = strings.ToLower(strings.TrimSpace(f.Search))
	return f
}

// Matches reports whether e passes every criterion of f. Search must
// already be lower case.
func (f *QueryFilter) Matches(e *Event) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if e.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	if f.Username != "" && !strings.EqualFold(e.Username, f.Username) {
		return false
	}
	if f.Since != nil && e.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Until != nil && e.Timestamp.After(*f.Until) {
		return false
	}
	if f.Search != "" {
		if strings.Contains(strings.ToLower(e.Type), f.Search) ||
			strings.Contains(strings.ToLower(e.Reason), f.Search) {
			return true
		}
		for _, v := range e.Details {
			if strings.Contains(strings.ToLower(v), f.Search) {
				return true
			}
		}
		return false
	}
	return true
}

// Stats summarizes a store.
type Stats struct {
	TotalEvents     int64            `json:"total_events"`
	EventsByType    map[string]int64 `json:"events_by_type"`
	EventsByOutcome map[string]int64 `json:"events_by_outcome"`
	OldestEvent     *time.Time       `json:"oldest_event,omitempty"`
	NewestEvent     *time.Time       `json:"newest_event,omitempty"`
}

func (s *Stats) add(e *Event) {
	s.TotalEvents++
	s.EventsByType[e.Type]++
	s.EventsByOutcome[string(e.Outcome)]++
	if s.OldestEvent == nil || e.Timestamp.Before(*s.OldestEvent) {
		t := e.Timestamp
		s.OldestEvent = &t
	}
	if s.NewestEvent == nil || e.Timestamp.After(*s.NewestEvent) {
		t := e.Timestamp
		s.NewestEvent = &t
	}
}

func newStats() *Stats {
	return &Stats{
		EventsByType:    make(map[string]int64),
		EventsByOutcome: make(map[string]int64),
	}
}
