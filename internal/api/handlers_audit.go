// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/vendorbooking/internal/audit"
	"github.com/tomtom215/vendorbooking/internal/logging"
)

// auditFilterFromQuery reads ?type=a,b&outcome=&username=&search=&since=&until=
// and page/page_size. Times are RFC 3339.
func auditFilterFromQuery(q url.Values) (audit.QueryFilter, int, error) {
	f := audit.QueryFilter{
		Username: q.Get("username"),
		Search:   q.Get("search"),
	}
	if v := q.Get("type"); v != "" {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Types = append(f.Types, t)
			}
		}
	}
	switch o := audit.Outcome(q.Get("outcome")); o {
	case "", audit.OutcomeSuccess, audit.OutcomeFailure:
		f.Outcome = o
	default:
		return f, 0, fmt.Errorf("outcome must be success or failure")
	}
	for _, tp := range []struct {
		name string
		dst  **time.Time
	}{{"since", &f.Since}, {"until", &f.Until}} {
		v := q.Get(tp.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, 0, fmt.Errorf("%s must be an RFC 3339 time", tp.name)
		}
		*tp.dst = &t
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(q.Get("page_size"))
	f.Limit = size
	f = audit.NormalizeFilter(f)
	f.Offset = (page - 1) * f.Limit
	return f, page, nil
}

// AuditEvents searches the audit trail. With ?format=json or ?format=cef
// the page is returned as a download instead of the envelope.
// GET /api/v1/admin/audit
func (h *Handler) AuditEvents(w http.ResponseWriter, r *http.Request) {
	filter, page, err := auditFilterFromQuery(r.URL.Query())
	if err != nil {
		WriteBadRequest(w, r, err.Error())
		return
	}

	if format := r.URL.Query().Get("format"); format != "" {
		exporter, ok := audit.ExporterFor(format)
		if !ok {
			WriteBadRequest(w, r, "format must be json or cef")
			return
		}
		events, err := h.trail.Query(r.Context(), filter)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		data, err := exporter.Export(events)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.audit.AdminAction(logging.UserFromContext(r.Context()), "audit_export", map[string]string{
			"format": strings.ToLower(format),
			"events": strconv.Itoa(len(events)),
		})
		w.Header().Set("Content-Type", exporter.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q",
			fmt.Sprintf("audit-%s.%s", time.Now().UTC().Format("20060102"), strings.ToLower(format))))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	var (
		events []audit.Event
		total  int64
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		events, err = h.trail.Query(ctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = h.trail.Count(ctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(w, r, err)
		return
	}

	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	if pages < 1 {
		pages = 1
	}
	NewResponseWriter(w, r).SuccessWithPagination(events, &PaginationMeta{
		Total:      int(total),
		Page:       page,
		PageSize:   filter.Limit,
		TotalPages: pages,
		HasMore:    page < pages,
	})
}

// AuditStats summarizes the audit trail.
// GET /api/v1/admin/audit/stats
func (h *Handler) AuditStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.trail.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]interface{}{
		"stats":   stats,
		"pending": h.trail.Pending(),
	})
}
