// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package models

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// ListParams are the list query options shared by every resource.
type ListParams struct {
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Search   string            `json:"search,omitempty"`
	Sort     string            `json:"sort,omitempty"`
	Order    string            `json:"order,omitempty"`
	IsActive *bool             `json:"is_active,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
}

// reservedParams are never treated as free-form filters.
var reservedParams = map[string]bool{
	"page": true, "page_size": true, "search": true, "sort": true, "order": true, "is_active": true,
}

// Normalize clamps paging and drops an unknown sort order.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	p.Order = strings.ToLower(p.Order)
	if p.Order != "asc" && p.Order != "desc" {
		p.Order = ""
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// Query encodes the params as a URL query string for the backend.
func (p ListParams) Query() url.Values {
	p = p.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("page_size", strconv.Itoa(p.PageSize))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	if p.IsActive != nil {
		q.Set("is_active", strconv.FormatBool(*p.IsActive))
	}
	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !reservedParams[k] {
			q.Set(k, p.Filters[k])
		}
	}
	return q
}

// ListParamsFromQuery parses console request query parameters. Unknown keys
// become filters and are forwarded to the backend.
func ListParamsFromQuery(q url.Values) ListParams {
	p := ListParams{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
	}
	p.Page, _ = strconv.Atoi(q.Get("page"))
	p.PageSize, _ = strconv.Atoi(q.Get("page_size"))
	if v := q.Get("is_active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			p.IsActive = &b
		}
	}
	for k, vs := range q {
		if reservedParams[k] || len(vs) == 0 || vs[0] == "" {
			continue
		}
		if p.Filters == nil {
			p.Filters = make(map[string]string)
		}
		p.Filters[k] = vs[0]
	}
	return p.Normalize()
}

// Page is the backend list envelope.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// TotalPages returns the page count, at least 1.
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 || p.Total <= 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// HasMore reports whether another page follows.
func (p Page[T]) HasMore() bool {
	return p.Page < p.TotalPages()
}

// ActiveToggle is the PATCH body for soft-delete and reactivation.
type ActiveToggle struct {
	IsActive bool `json:"is_active"`
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }
