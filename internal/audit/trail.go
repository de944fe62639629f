// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/metrics"
)

// Config tunes a Trail.
type Config struct {
	// BufferSize bounds events waiting to be stored. Record drops events
	// when the buffer is full.
	BufferSize int

	// Retention is how long events are kept. 0 keeps them forever.
	Retention time.Duration

	// CleanupInterval is how often the retention sweep runs.
	CleanupInterval time.Duration
}

// DefaultConfig returns the console defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:      1000,
		Retention:       90 * 24 * time.Hour,
		CleanupInterval: time.Hour,
	}
}

// statsStore is implemented by both stores.
type statsStore interface {
	Stats(ctx context.Context) (*Stats, error)
}

// Trail is the queryable audit trail. It receives every event the
// AuditLoggers write and stores it asynchronously from Serve, which also
// sweeps expired events.
//
//	trail := audit.NewTrail(audit.NewMemoryStore(10000), audit.DefaultConfig())
//	logging.SetAuditSink(trail)
//	tree.AddStateService(trail)
type Trail struct {
	store  Store
	config Config
	events chan *Event
	now    func() time.Time
}

var _ logging.AuditSink = (*Trail)(nil)

// NewTrail stores events in store. Zero config fields take the defaults.
func NewTrail(store Store, config Config) *Trail {
	d := DefaultConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = d.BufferSize
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = d.CleanupInterval
	}
	return &Trail{
		store:  store,
		config: config,
		events: make(chan *Event, config.BufferSize),
		now:    time.Now,
	}
}

// Record implements logging.AuditSink. It never blocks.
func (t *Trail) Record(ev *logging.AuditEvent) {
	e := &Event{
		ID:        uuid.NewString(),
		Timestamp: t.now().UTC(),
		Type:      ev.Event,
		Outcome:   OutcomeSuccess,
		Severity:  SeverityInfo,
		Username:  ev.Username,
		SessionID: ev.SessionID,
		IPAddress: ev.IPAddress,
		Reason:    ev.Reason,
		Details:   ev.Details,
	}
	if !ev.Success {
		e.Outcome = OutcomeFailure
		e.Severity = SeverityWarning
	}
	if ev.Event == "forced_logout" {
		e.Severity = SeverityWarning
	}

	select {
	case t.events <- e:
	default:
		metrics.AuditEvents.WithLabelValues("dropped").Inc()
		logging.Warn().Str("event", e.Type).Msg("Audit buffer full, dropping event")
	}
}

// Serve implements suture.Service. Buffered events are stored before it
// returns.
func (t *Trail) Serve(ctx context.Context) error {
	ticker := time.NewTicker(t.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.drain()
			return ctx.Err()
		case e := <-t.events:
			t.save(ctx, e)
		case <-ticker.C:
			if _, err := t.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Msg("Audit retention sweep failed")
			}
		}
	}
}

func (t *Trail) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case e := <-t.events:
			t.save(ctx, e)
		default:
			return
		}
	}
}

func (t *Trail) save(ctx context.Context, e *Event) {
	if err := t.store.Save(ctx, e); err != nil {
		metrics.AuditEvents.WithLabelValues("failed").Inc()
		logging.Error().Err(err).Str("event", e.Type).Msg("Failed to store audit event")
		return
	}
	metrics.AuditEvents.WithLabelValues("stored").Inc()
}

// Sweep deletes events past the retention period.
func (t *Trail) Sweep(ctx context.Context) (int64, error) {
	if t.config.Retention <= 0 {
		return 0, nil
	}
	n, err := t.store.Delete(ctx, t.now().Add(-t.config.Retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logging.Info().Int64("count", n).Msg("Expired audit events removed")
	}
	return n, nil
}

// Query returns matching events, newest first.
func (t *Trail) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return t.store.Query(ctx, filter)
}

// Count returns the number of matching events.
func (t *Trail) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return t.store.Count(ctx, filter)
}

// Stats summarizes the store.
func (t *Trail) Stats(ctx context.Context) (*Stats, error) {
	if s, ok := t.store.(statsStore); ok {
		return s.Stats(ctx)
	}
	return nil, errors.New("audit: store has no stats")
}

// Pending returns the number of buffered events.
func (t *Trail) Pending() int {
	return len(t.events)
}

// String names the service in supervisor events.
func (t *Trail) String() string {
	return "audit-trail"
}
