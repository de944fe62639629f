// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/models"
)

// Resource is the service wrapper for one REST collection.
type Resource[T any] struct {
	client *Client
	tokens TokenSource
	name   string
}

func newResource[T any](c *Client, tokens TokenSource, name string) *Resource[T] {
	return &Resource[T]{client: c, tokens: tokens, name: name}
}

// Name returns the collection name, which is also its URL segment.
func (r *Resource[T]) Name() string { return r.name }

func (r *Resource[T]) collectionPath() string { return "/" + r.name }

func (r *Resource[T]) itemPath(id int64) string {
	return "/" + r.name + "/" + strconv.FormatInt(id, 10)
}

// List fetches one page.
func (r *Resource[T]) List(ctx context.Context, params models.ListParams) (*models.Page[T], error) {
	req := &request{
		method:   http.MethodGet,
		path:     r.collectionPath(),
		query:    params.Query(),
		accept:   "application/json",
		resource: r.name,
	}
	var page models.Page[T]
	if err := r.client.do(ctx, r.tokens, req, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return &page, nil
}

// ListAll walks every page matching params, stopping after limit items when
// limit > 0.
func (r *Resource[T]) ListAll(ctx context.Context, params models.ListParams, limit int) ([]T, error) {
	all, _, err := r.ListCapped(ctx, params, limit)
	return all, err
}

// ListCapped is ListAll that also reports whether records past limit were
// left out.
func (r *Resource[T]) ListCapped(ctx context.Context, params models.ListParams, limit int) ([]T, bool, error) {
	params.PageSize = models.MaxPageSize
	params.Page = 1

	var all []T
	for {
		page, err := r.List(ctx, params)
		if err != nil {
			return nil, false, err
		}
		all = append(all, page.Items...)
		if limit > 0 && len(all) >= limit {
			truncated := len(all) > limit || page.HasMore()
			if truncated {
				logging.Ctx(ctx).Warn().
					Str("resource", r.name).
					Int("limit", limit).
					Int("total", page.Total).
					Msg("List truncated at limit")
			}
			return all[:limit], truncated, nil
		}
		if len(page.Items) == 0 || !page.HasMore() {
			return all, false, nil
		}
		params.Page++
	}
}

// Get fetches one record.
func (r *Resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	req := &request{method: http.MethodGet, path: r.itemPath(id), accept: "application/json", resource: r.name}
	var item T
	if err := r.client.do(ctx, r.tokens, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create posts a new record and returns the backend's copy.
func (r *Resource[T]) Create(ctx context.Context, item *T) (*T, error) {
	return r.write(ctx, http.MethodPost, r.collectionPath(), item)
}

// Update replaces a record.
func (r *Resource[T]) Update(ctx context.Context, id int64, item *T) (*T, error) {
	return r.write(ctx, http.MethodPut, r.itemPath(id), item)
}

// SetActive toggles is_active. Deactivation is the soft delete.
func (r *Resource[T]) SetActive(ctx context.Context, id int64, active bool) (*T, error) {
	return r.write(ctx, http.MethodPatch, r.itemPath(id), models.ActiveToggle{IsActive: active})
}

// Delete removes a record.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	req := &request{method: http.MethodDelete, path: r.itemPath(id), resource: r.name}
	return r.client.do(ctx, r.tokens, req, nil)
}

func (r *Resource[T]) write(ctx context.Context, method, path string, payload interface{}) (*T, error) {
	req, err := jsonRequest(method, path, r.name, payload)
	if err != nil {
		return nil, err
	}
	var out T
	if err := r.client.do(ctx, r.tokens, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Collection names, matching the backend URL segments.
const (
	ResourceCarriers            = "carriers"
	ResourceCompanies           = "companies"
	ResourceCustomers           = "customers"
	ResourceSuppliers           = "suppliers"
	ResourcePorts               = "ports"
	ResourceContainerTypes      = "container-types"
	ResourceContainerThresholds = "container-thresholds"
	ResourceContainerPriorities = "container-priorities"
	ResourceShipmentOrders      = "shipment-orders"
	ResourceUsers               = "users"
	ResourceRoles               = "roles"
)

// ResourceNames lists every collection.
var ResourceNames = []string{
	ResourceCarriers,
	ResourceCompanies,
	ResourceCustomers,
	ResourceSuppliers,
	ResourcePorts,
	ResourceContainerTypes,
	ResourceContainerThresholds,
	ResourceContainerPriorities,
	ResourceShipmentOrders,
	ResourceUsers,
	ResourceRoles,
}

// IsResource reports whether name is a known collection.
func IsResource(name string) bool {
	for _, n := range ResourceNames {
		if n == name {
			return true
		}
	}
	return false
}
