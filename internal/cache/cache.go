// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/metrics"
)

const sep = "|"

// Entry represents a cached item with expiration
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache provides a thread-safe in-memory cache with TTL support
type Cache struct {
	mu              sync.RWMutex
	entries         map[string]Entry
	ttl             time.Duration
	cleanupInterval time.Duration
	stats           Stats
	loads           singleflight.Group

	// gens counts invalidations per resource; epoch counts wider purges.
	// A load only stores its result if neither moved while it ran.
	gens  map[string]uint64
	epoch uint64
}

type generation struct {
	resource uint64
	epoch    uint64
}

// Stats tracks cache performance metrics
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New creates a cache whose entries live for ttl. The janitor is not
// started; run Serve under the supervisor.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries:         make(map[string]Entry),
		gens:            make(map[string]uint64),
		ttl:             ttl,
		cleanupInterval: time.Minute,
		stats:           Stats{LastCleanup: time.Now()},
	}
}

// WithCleanupInterval changes how often the janitor sweeps.
func (c *Cache) WithCleanupInterval(d time.Duration) *Cache {
	if d > 0 {
		c.cleanupInterval = d
	}
	return c
}

// Key builds a cache key. params is hashed, so any JSON-encodable value works.
func Key(resource, user, kind string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", params))
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s%s%s%s%s:%x", resource, sep, user, sep, kind, hash[:16])
}

func resourceOf(key string) string {
	if i := strings.Index(key, sep); i >= 0 {
		return key[:i]
	}
	return key
}

// Get retrieves a value, treating expired entries as missing.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	resource := resourceOf(key)
	if !exists {
		c.recordMiss(resource)
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordMiss(resource)
		c.recordEvictions(1)
		return nil, false
	}

	c.recordHit(resource)
	return entry.Data, true
}

// peek reads a live entry without touching stats.
func (c *Cache) peek(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Data, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = Entry{Data: value, ExpiresAt: time.Now().Add(ttl)}
	n := len(c.entries)
	c.mu.Unlock()

	c.setTotal(n)
}

// Delete removes a specific cache entry by key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	n := len(c.entries)
	c.mu.Unlock()

	if ok {
		c.recordEvictions(1)
	}
	c.setTotal(n)
}

// InvalidatePrefix removes every key starting with prefix and returns how
// many were removed.
func (c *Cache) InvalidatePrefix(prefix string) int {
	return c.removeWhere(func(key string) bool { return strings.HasPrefix(key, prefix) }, "")
}

// InvalidateResource removes every user's entries for resource. Loads for
// the resource already in flight will not store their results.
func (c *Cache) InvalidateResource(resource string) {
	prefix := resource + sep
	n := c.removeWhere(func(key string) bool { return strings.HasPrefix(key, prefix) }, resource)
	if n > 0 {
		logging.Debug().Str("resource", resource).Int("entries", n).Msg("Cache invalidated")
	}
}

// PurgeUser removes all entries belonging to user.
func (c *Cache) PurgeUser(user string) int {
	marker := sep + user + sep
	return c.removeWhere(func(key string) bool { return strings.Contains(key, marker) }, "")
}

// removeWhere deletes matching keys and bumps the generation of resource,
// or the cache-wide epoch when resource is empty.
func (c *Cache) removeWhere(match func(string) bool, resource string) int {
	c.mu.Lock()
	if resource != "" {
		c.gens[resource]++
	} else {
		c.epoch++
	}
	removed := 0
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
			removed++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	c.recordEvictions(int64(removed))
	c.setTotal(n)
	return removed
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	evictions := int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.epoch++
	c.mu.Unlock()

	c.recordEvictions(evictions)
	c.setTotal(0)
}

func (c *Cache) generationOf(resource string) generation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return generation{resource: c.gens[resource], epoch: c.epoch}
}

// setIfCurrent stores value only if resource has not been invalidated
// since gen was taken.
func (c *Cache) setIfCurrent(key string, value interface{}, gen generation) bool {
	c.mu.Lock()
	if c.gens[resourceOf(key)] != gen.resource || c.epoch != gen.epoch {
		c.mu.Unlock()
		return false
	}
	c.entries[key] = Entry{Data: value, ExpiresAt: time.Now().Add(c.ttl)}
	n := len(c.entries)
	c.mu.Unlock()

	c.setTotal(n)
	return true
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of current cache performance statistics.
func (c *Cache) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		TotalKeys:   c.stats.TotalKeys,
		LastCleanup: c.stats.LastCleanup,
	}
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// GetOrLoad returns the cached value for key or calls load, caching its
// result. Concurrent misses on the same key share one load. A result is
// returned but not cached when the resource is invalidated mid-load.
func GetOrLoad[T any](c *Cache, key string, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	v, err, _ := c.loads.Do(key, func() (interface{}, error) {
		if v, ok := c.peek(key); ok {
			if _, ok := v.(T); ok {
				return v, nil
			}
		}
		gen := c.generationOf(resourceOf(key))
		out, err := load()
		if err != nil {
			return nil, err
		}
		if !c.setIfCurrent(key, out, gen) {
			logging.Debug().Str("key", key).Msg("Cache load raced an invalidation, result not stored")
		}
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Serve runs the janitor until ctx is done. It satisfies suture.Service.
func (c *Cache) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// String names the service in supervisor logs.
func (c *Cache) String() string { return "cache-janitor" }

// cleanup removes all expired entries
func (c *Cache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	evictions := int64(0)
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evictions++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = int64(n)
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()
	metrics.CacheEntries.Set(float64(n))
}

func (c *Cache) recordHit(resource string) {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	metrics.RecordCacheLookup(resource, true)
}

func (c *Cache) recordMiss(resource string) {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
	metrics.RecordCacheLookup(resource, false)
}

func (c *Cache) recordEvictions(n int64) {
	if n == 0 {
		return
	}
	c.stats.mu.Lock()
	c.stats.Evictions += n
	c.stats.mu.Unlock()
}

func (c *Cache) setTotal(n int) {
	c.stats.mu.Lock()
	c.stats.TotalKeys = int64(n)
	c.stats.mu.Unlock()
	metrics.CacheEntries.Set(float64(n))
}
