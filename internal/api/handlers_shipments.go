// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/excel"
	"github.com/tomtom215/vendorbooking/internal/forms"
	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/metrics"
	"github.com/tomtom215/vendorbooking/internal/models"
)

// Import modes.
const (
	ImportModeUpload = "upload"
	ImportModeRows   = "rows"
)

// Headers set on an export cut short by IMPORT_EXPORT_LIMIT or
// IMPORT_LOOKUP_LIMIT.
const (
	HeaderExportTruncated  = "X-Export-Truncated"
	HeaderLookupsTruncated = "X-Lookups-Truncated"
)

// defaultMaxFileSize applies when the import section sets no limit.
const defaultMaxFileSize = 10 << 20

// multipartOverhead is allowed on top of the file size limit for the
// multipart framing and form fields.
const multipartOverhead = 1 << 20

// ImportResult summarizes a shipment spreadsheet import.
type ImportResult struct {
	File    string `json:"file"`
	Mode    string `json:"mode"`
	DryRun  bool   `json:"dry_run"`
	Total   int    `json:"total"`
	Valid   int    `json:"valid"`
	Created int    `json:"created"`
	Failed  int    `json:"failed"`

	Errors []excel.RowError `json:"errors"`

	// TruncatedLookups names master data collections that hit the lookup
	// limit; codes past it come back as unknown.
	TruncatedLookups []string `json:"truncated_lookups,omitempty"`

	// Preview holds the resolved orders of a dry run.
	Preview []excel.ResolvedRow `json:"preview,omitempty"`
}

// ImportShipments validates a spreadsheet and imports it. dry_run=true
// only validates; mode=rows creates orders one by one instead of handing
// the file to the backend upload endpoint.
// POST /api/v1/shipment-orders/import (multipart "file")
func (h *Handler) ImportShipments(w http.ResponseWriter, r *http.Request) {
	svc, session, err := h.services(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	q := r.URL.Query()
	dryRun, _ := strconv.ParseBool(q.Get("dry_run"))
	mode := q.Get("mode")
	switch mode {
	case "":
		mode = ImportModeUpload
	case ImportModeUpload, ImportModeRows:
	default:
		WriteBadRequest(w, r, "mode must be upload or rows")
		return
	}

	filename, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	parsed, err := excel.Parse(bytes.NewReader(data), h.config.Import.MaxRows)
	if err != nil {
		if errors.Is(err, excel.ErrHeaderMismatch) || errors.Is(err, excel.ErrTooManyRows) || errors.Is(err, excel.ErrEmptyWorkbook) {
			h.fail(w, r, err)
			return
		}
		logging.Ctx(r.Context()).Debug().Err(err).Str("file", filename).Msg("Unreadable workbook")
		WriteError(w, r, http.StatusBadRequest, ErrCodeInvalidFile, "The file is not a readable xlsx workbook.")
		return
	}

	result := &ImportResult{
		File:   filename,
		Mode:   mode,
		DryRun: dryRun,
		Total:  parsed.Total,
		Errors: parsed.Errors,
	}

	// Upload mode leaves code resolution to the backend.
	var resolved []excel.ResolvedRow
	result.Valid = len(parsed.Rows)
	if dryRun || mode == ImportModeRows {
		lk, err := excel.LoadLookups(r.Context(), svc, h.config.Import.Lookups())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		result.TruncatedLookups = lk.Truncated()
		var rowErrs []excel.RowError
		resolved, rowErrs = excel.Resolve(parsed.Rows, lk)
		result.Errors = append(result.Errors, rowErrs...)
		result.Valid = len(resolved)
	}
	sortRowErrors(result.Errors)
	result.Failed = countRows(result.Errors)
	metrics.RecordImportRows("valid", result.Valid)
	metrics.RecordImportRows("invalid", result.Failed)

	if dryRun {
		result.Preview = resolved
		h.audit.ImportFinished(session.Username, filename, result.Total, result.Failed, true)
		WriteSuccess(w, r, result)
		return
	}

	if mode == ImportModeUpload && len(result.Errors) > 0 {
		h.audit.ImportFinished(session.Username, filename, result.Total, result.Failed, false)
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusUnprocessableEntity, ErrCodeValidationFailed,
			fmt.Sprintf("%d of %d rows are invalid", result.Failed, result.Total), result)
		return
	}

	key := forms.Key(session.ID, backend.ResourceShipmentOrders+".import", 0)
	err = forms.Run(r.Context(), h.guard, h.invalidator(), key, backend.ResourceShipmentOrders+".import", backend.ResourceShipmentOrders,
		func(ctx context.Context) error {
			if mode == ImportModeRows {
				return createRows(ctx, svc, resolved, result)
			}
			up, err := svc.UploadShipmentFile(ctx, filename, data)
			if err != nil {
				return err
			}
			result.Created = up.Created
			result.Failed += up.Failed
			for _, e := range up.Errors {
				result.Errors = append(result.Errors, excel.RowError{Row: e.Row, Column: e.Field, Message: e.Message})
			}
			return nil
		})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	metrics.RecordImportRows("created", result.Created)
	metrics.RecordImportRows("failed", result.Failed)
	h.audit.ImportFinished(session.Username, filename, result.Total, result.Failed, false)
	WriteSuccess(w, r, result)
}

// readUpload reads the "file" part, enforcing the configured size limit.
// It writes the error response itself and returns ok=false on failure.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (filename string, data []byte, ok bool) {
	limit := h.config.Import.MaxFileSize
	if limit <= 0 {
		limit = defaultMaxFileSize
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			WriteError(w, r, http.StatusRequestEntityTooLarge, ErrCodeInvalidFile, "The file is too large.")
			return "", nil, false
		}
		WriteBadRequest(w, r, "A spreadsheet must be uploaded in the \"file\" field.")
		return "", nil, false
	}
	defer file.Close()

	if header.Size > limit {
		WriteError(w, r, http.StatusRequestEntityTooLarge, ErrCodeInvalidFile, "The file is too large.")
		return "", nil, false
	}
	data, err = io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		WriteBadRequest(w, r, "The upload could not be read.")
		return "", nil, false
	}
	if int64(len(data)) > limit {
		WriteError(w, r, http.StatusRequestEntityTooLarge, ErrCodeInvalidFile, "The file is too large.")
		return "", nil, false
	}
	return filepath.Base(header.Filename), data, true
}

// createRows creates resolved orders one by one, recording per-row
// failures in result. Rows left when ctx ends are reported as not
// imported; a logged-out session aborts the import.
func createRows(ctx context.Context, svc *backend.Services, rows []excel.ResolvedRow, result *ImportResult) error {
	for _, row := range rows {
		if ctx.Err() != nil {
			result.Failed++
			result.Errors = append(result.Errors, excel.RowError{Row: row.Line, Message: "not imported: request canceled"})
			continue
		}
		if _, err := svc.ShipmentOrders.Create(ctx, row.Order); err != nil {
			if errors.Is(err, backend.ErrLoggedOut) {
				return err
			}
			result.Failed++
			fields := backend.FieldErrors(err)
			if len(fields) == 0 {
				result.Errors = append(result.Errors, excel.RowError{Row: row.Line, Message: backend.UserMessage(err)})
				continue
			}
			names := make([]string, 0, len(fields))
			for name := range fields {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				result.Errors = append(result.Errors, excel.RowError{Row: row.Line, Column: name, Message: fields[name][0]})
			}
			continue
		}
		result.Created++
	}
	return nil
}

// ExportShipments streams the orders matching the list filters as xlsx.
// GET /api/v1/shipment-orders/export?search=&status=
func (h *Handler) ExportShipments(w http.ResponseWriter, r *http.Request) {
	svc, session, err := h.services(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	params := models.ListParamsFromQuery(r.URL.Query())
	params.Page = 1
	params.PageSize = models.MaxPageSize

	var (
		orders    []models.ShipmentOrder
		truncated bool
		lk        *excel.Lookups
	)
	limit := h.config.Import.Exports()
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		orders, truncated, err = svc.ShipmentOrders.ListCapped(ctx, params, limit)
		return err
	})
	g.Go(func() error {
		var err error
		lk, err = excel.LoadLookups(ctx, svc, h.config.Import.Lookups())
		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(w, r, err)
		return
	}

	data, err := excel.Export(orders, lk)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	metrics.ExportRows.Add(float64(len(orders)))
	h.audit.ExportFinished(session.Username, len(orders))
	logging.Ctx(r.Context()).Info().
		Str("username", session.Username).
		Int("rows", len(orders)).
		Bool("truncated", truncated).
		Msg("Shipment orders exported")

	if truncated {
		w.Header().Set(HeaderExportTruncated, strconv.Itoa(limit))
	}
	if names := lk.Truncated(); len(names) > 0 {
		w.Header().Set(HeaderLookupsTruncated, strings.Join(names, ", "))
	}

	writeWorkbook(w, fmt.Sprintf("shipment-orders-%s.xlsx", time.Now().UTC().Format("20060102")), data)
}

// ShipmentTemplate returns the upload template. The backend's own
// template wins; the built-in one is used when the backend has none.
// GET /api/v1/shipment-orders/template
func (h *Handler) ShipmentTemplate(w http.ResponseWriter, r *http.Request) {
	svc, _, err := h.services(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data, err := svc.DownloadShipmentTemplate(r.Context())
	if err != nil || len(data) == 0 {
		if err != nil && backend.Classify(err) != backend.KindNotFound {
			h.fail(w, r, err)
			return
		}
		if data, err = excel.Template(); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	writeWorkbook(w, "shipment-orders-template.xlsx", data)
}

func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", backend.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func sortRowErrors(errs []excel.RowError) {
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Row < errs[j].Row })
}

// countRows counts distinct rows among errs.
func countRows(errs []excel.RowError) int {
	seen := make(map[int]struct{}, len(errs))
	for _, e := range errs {
		seen[e.Row] = struct{}{}
	}
	return len(seen)
}
