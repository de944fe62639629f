// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// scriptedGC returns its results in order, then ErrNoRewrite.
type scriptedGC struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (g *scriptedGC) RunValueLogGC(float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if len(g.results) == 0 {
		return badger.ErrNoRewrite
	}
	err := g.results[0]
	g.results = g.results[1:]
	return err
}

func (g *scriptedGC) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestBadgerGCService_RunOnce(t *testing.T) {
	tests := []struct {
		name      string
		results   []error
		wantCalls int
		wantErr   bool
	}{
		{"nothing to reclaim", nil, 1, false},
		{"rewrites until done", []error{nil, nil}, 3, false},
		{"rejected", []error{badger.ErrRejected}, 1, false},
		{"disk failure", []error{nil, errors.New("disk full")}, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gc := &scriptedGC{results: tt.results}
			err := NewBadgerGCService(gc, time.Minute).RunOnce(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if gc.Calls() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", gc.Calls(), tt.wantCalls)
			}
		})
	}
}

func TestBadgerGCService_Serve(t *testing.T) {
	gc := &scriptedGC{}
	svc := NewBadgerGCService(gc, 10*time.Millisecond)
	if svc.String() != "badger-gc" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v", err)
	}
	if gc.Calls() == 0 {
		t.Error("no GC pass ran")
	}
}

func TestBadgerGCService_RealDB(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := NewBadgerGCService(db, 0).RunOnce(context.Background()); err != nil {
		t.Errorf("RunOnce on an empty store: %v", err)
	}
}

func TestNewBadgerGCService_DefaultInterval(t *testing.T) {
	if svc := NewBadgerGCService(&scriptedGC{}, 0); svc.interval != 10*time.Minute {
		t.Errorf("interval = %v", svc.interval)
	}
}
