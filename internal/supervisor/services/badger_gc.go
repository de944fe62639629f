// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/vendorbooking/internal/logging"
)

// ValueLogGC is the part of *badger.DB the GC service drives.
type ValueLogGC interface {
	RunValueLogGC(discardRatio float64) error
}

// BadgerGCService reclaims value log space in the persistent session store.
// Sessions are small and short lived, so expired entries pile up in the
// value log until a GC pass rewrites it.
type BadgerGCService struct {
	db           ValueLogGC
	interval     time.Duration
	discardRatio float64
	name         string
}

// NewBadgerGCService runs a GC pass every interval (default 10m).
func NewBadgerGCService(db ValueLogGC, interval time.Duration) *BadgerGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &BadgerGCService{
		db:           db,
		interval:     interval,
		discardRatio: 0.5,
		name:         "badger-gc",
	}
}

// Serve implements suture.Service.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
}

// RunOnce rewrites value log files until badger reports nothing left to
// reclaim. ErrNoRewrite and ErrRejected are not failures.
func (s *BadgerGCService) RunOnce(ctx context.Context) error {
	rewrites := 0
	for ctx.Err() == nil {
		err := s.db.RunValueLogGC(s.discardRatio)
		if err == nil {
			rewrites++
			continue
		}
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		return fmt.Errorf("value log gc: %w", err)
	}
	if rewrites > 0 {
		logging.Debug().Int("rewrites", rewrites).Msg("Session store value log compacted")
	}
	return nil
}

// String names the service in supervisor events.
func (s *BadgerGCService) String() string {
	return s.name
}
