// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/cache"
	"github.com/tomtom215/vendorbooking/internal/models"
	"github.com/tomtom215/vendorbooking/internal/rbac"
)

// dashboardResource is the cache namespace of dashboard summaries.
const dashboardResource = "dashboard"

// recentOrders is how many orders the dashboard lists.
const recentOrders = 5

// dashboardConcurrency bounds parallel backend calls per dashboard load.
const dashboardConcurrency = 6

// Dashboard is the landing page summary.
type Dashboard struct {
	// ActiveCounts maps collection name to its number of active records,
	// for the collections the session may view.
	ActiveCounts map[string]int `json:"active_counts"`

	// ShipmentsByStatus is only present with shipment_order.view.
	ShipmentsByStatus map[models.ShipmentStatus]int `json:"shipments_by_status,omitempty"`
	RecentShipments   []models.ShipmentOrder        `json:"recent_shipments,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// activeCount returns the number of active records through a one-item
// page.
func activeCount[T any](ctx context.Context, res *backend.Resource[T], filters map[string]string) (int, error) {
	page, err := res.List(ctx, models.ListParams{PageSize: 1, IsActive: models.Bool(true), Filters: filters})
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

// GetDashboard loads the summary with concurrent backend calls. Any failed
// call fails the whole summary.
// GET /api/v1/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	svc, session, err := h.services(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	gate := session.Gate()

	key := cache.Key(dashboardResource, session.Username, "summary", gate.Privileges())
	dash, err := cache.GetOrLoad(h.cache, key, func() (*Dashboard, error) {
		return h.loadDashboard(r.Context(), svc, gate)
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(w, r, dash)
}

func (h *Handler) loadDashboard(ctx context.Context, svc *backend.Services, gate *rbac.Gate) (*Dashboard, error) {
	dash := &Dashboard{ActiveCounts: make(map[string]int)}
	var mu sync.Mutex
	set := func(resource string, n int) {
		mu.Lock()
		dash.ActiveCounts[resource] = n
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardConcurrency)

	counters := map[string]func(context.Context) (int, error){
		backend.ResourceCarriers:            func(ctx context.Context) (int, error) { return activeCount(ctx, svc.Carriers, nil) },
		backend.ResourceCompanies:           func(ctx context.Context) (int, error) { return activeCount(ctx, svc.Companies, nil) },
		backend.ResourceCustomers:           func(ctx context.Context) (int, error) { return activeCount(ctx, svc.Customers, nil) },
		backend.ResourceSuppliers:           func(ctx context.Context) (int, error) { return activeCount(ctx, svc.Suppliers, nil) },
		backend.ResourcePorts:               func(ctx context.Context) (int, error) { return activeCount(ctx, svc.Ports, nil) },
		backend.ResourceContainerTypes:      func(ctx context.Context) (int, error) { return activeCount(ctx, svc.ContainerTypes, nil) },
		backend.ResourceContainerThresholds: func(ctx context.Context) (int, error) { return activeCount(ctx, svc.ContainerThresholds, nil) },
		backend.ResourceContainerPriorities: func(ctx context.Context) (int, error) { return activeCount(ctx, svc.ContainerPriorities, nil) },
		backend.ResourceShipmentOrders:      func(ctx context.Context) (int, error) { return activeCount(ctx, svc.ShipmentOrders, nil) },
		backend.ResourceUsers:               func(ctx context.Context) (int, error) { return activeCount(ctx, svc.Users, nil) },
		backend.ResourceRoles:               func(ctx context.Context) (int, error) { return activeCount(ctx, svc.Roles, nil) },
	}
	for resource, count := range counters {
		if priv, ok := rbac.ResourcePrivilege(resource, rbac.ActionView); !ok || !gate.HasAccess(priv) {
			continue
		}
		g.Go(func() error {
			n, err := count(ctx)
			if err != nil {
				return err
			}
			set(resource, n)
			return nil
		})
	}

	if gate.HasAccess(rbac.Privilege(rbac.ModuleShipmentOrder, rbac.ActionView)) {
		dash.ShipmentsByStatus = make(map[models.ShipmentStatus]int, len(models.ShipmentStatuses))
		for _, status := range models.ShipmentStatuses {
			g.Go(func() error {
				n, err := activeCount(ctx, svc.ShipmentOrders, map[string]string{"status": string(status)})
				if err != nil {
					return err
				}
				mu.Lock()
				dash.ShipmentsByStatus[status] = n
				mu.Unlock()
				return nil
			})
		}
		g.Go(func() error {
			page, err := svc.ShipmentOrders.List(ctx, models.ListParams{
				PageSize: recentOrders,
				Sort:     "created_at",
				Order:    "desc",
			})
			if err != nil {
				return err
			}
			mu.Lock()
			dash.RecentShipments = page.Items
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	dash.GeneratedAt = time.Now().UTC()
	return dash, nil
}
