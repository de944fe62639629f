// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecisionsTotal counts uncached role table evaluations by outcome.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_authz_decisions_total",
			Help: "Role table evaluations by decision",
		},
		[]string{"decision"},
	)

	// CacheLookupsTotal counts decision cache lookups.
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbt_authz_cache_lookups_total",
			Help: "Decision cache lookups by result",
		},
		[]string{"result"},
	)
)

func recordDecision(allowed bool) {
	if allowed {
		DecisionsTotal.WithLabelValues("allow").Inc()
		return
	}
	DecisionsTotal.WithLabelValues("deny").Inc()
}

func recordCacheLookup(hit bool) {
	if hit {
		CacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	CacheLookupsTotal.WithLabelValues("miss").Inc()
}
