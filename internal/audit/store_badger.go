// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package audit

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// auditKeyPrefix keeps audit keys apart from the session keys in the
// shared database.
const auditKeyPrefix = "audit:"

// BadgerStore persists events in the console's session database. Keys
// sort by timestamp, so queries walk newest first without an index.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore wraps an open BadgerDB. A positive ttl is set on every
// entry so badger drops expired events even between retention sweeps.
func NewBadgerStore(db *badger.DB, ttl time.Duration) *BadgerStore {
	return &BadgerStore{db: db, ttl: ttl}
}

// eventKey is prefix + big-endian unix nanos + ID.
func eventKey(e *Event) []byte {
	key := make([]byte, 0, len(auditKeyPrefix)+8+len(e.ID))
	key = append(key, auditKeyPrefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(e.Timestamp.UnixNano()))
	return append(key, e.ID...)
}

func keyTime(key []byte) time.Time {
	nanos := binary.BigEndian.Uint64(key[len(auditKeyPrefix) : len(auditKeyPrefix)+8])
	return time.Unix(0, int64(nanos))
}

// Save stores event.
func (s *BadgerStore) Save(_ context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	entry := badger.NewEntry(eventKey(event), data)
	if s.ttl > 0 {
		entry = entry.WithTTL(s.ttl)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

// scan calls fn for every event newest first until fn returns false.
func (s *BadgerStore) scan(ctx context.Context, fn func(e *Event) bool) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(auditKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// In reverse mode Seek lands on the last key <= the seek key.
		seek := append([]byte(auditKeyPrefix), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var e Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return fmt.Errorf("unmarshal audit event: %w", err)
			}
			if !fn(&e) {
				return nil
			}
		}
		return nil
	})
}

// Query walks newest first.
func (s *BadgerStore) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	filter = NormalizeFilter(filter)

	results := []Event{}
	skipped := 0
	err := s.scan(ctx, func(e *Event) bool {
		if filter.Since != nil && e.Timestamp.Before(*filter.Since) {
			return false
		}
		if !filter.Matches(e) {
			return true
		}
		if skipped < filter.Offset {
			skipped++
			return true
		}
		results = append(results, *e)
		return len(results) < filter.Limit
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Count ignores Limit and Offset.
func (s *BadgerStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	filter = NormalizeFilter(filter)

	var n int64
	err := s.scan(ctx, func(e *Event) bool {
		if filter.Matches(e) {
			n++
		}
		return true
	})
	return n, err
}

// Delete removes events older than olderThan. Keys sort by time, so the
// sweep stops at the first newer key.
func (s *BadgerStore) Delete(ctx context.Context, olderThan time.Time) (int64, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(auditKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := it.Item().KeyCopy(nil)
			if !keyTime(key).Before(olderThan) {
				break
			}
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil || len(keys) == 0 {
		return 0, err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, fmt.Errorf("delete audit event: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush audit deletes: %w", err)
	}
	return int64(len(keys)), nil
}

// Stats summarizes the stored events.
func (s *BadgerStore) Stats(ctx context.Context) (*Stats, error) {
	stats := newStats()
	err := s.scan(ctx, func(e *Event) bool {
		stats.add(e)
		return true
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
