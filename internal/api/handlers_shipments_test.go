// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/excel"
	"github.com/tomtom215/vendorbooking/internal/models"
)

func TestImportDryRun(t *testing.T) {
	ts := newTestServer(t)
	ts.seedMasterData(t)
	token := ts.login(t, "ops")

	bad := validOrderRow("SO-2")
	bad[1] = "NOPE"
	resp := ts.upload(t, "?dry_run=true", token, workbook(t, validOrderRow("SO-1"), bad))
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.status, resp.body)
	}
	var result ImportResult
	resp.decode(t, &result)

	if !result.DryRun || result.Total != 2 || result.Valid != 1 || result.Failed != 1 || result.Created != 0 {
		t.Errorf("result = %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 3 || result.Errors[0].Column != "Customer Code" {
		t.Errorf("errors = %+v", result.Errors)
	}
	if len(result.Preview) != 1 || result.Preview[0].Order.POLID != 104 || result.Preview[0].Order.PODID != 105 {
		t.Errorf("preview = %+v", result.Preview)
	}
	if ts.fake.Count(backend.ResourceShipmentOrders) != 0 || len(ts.fake.Uploads()) != 0 {
		t.Error("dry run wrote to the backend")
	}
}

func TestImportRowsMode(t *testing.T) {
	ts := newTestServer(t)
	ts.seedMasterData(t)
	token := ts.login(t, "ops")

	resp := ts.upload(t, "?mode=rows", token, workbook(t, validOrderRow("SO-1"), validOrderRow("SO-2")))
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.status, resp.body)
	}
	var result ImportResult
	resp.decode(t, &result)
	if result.Created != 2 || result.Failed != 0 || result.Mode != ImportModeRows {
		t.Errorf("result = %+v", result)
	}
	if ts.fake.Count(backend.ResourceShipmentOrders) != 2 {
		t.Errorf("orders in backend = %d", ts.fake.Count(backend.ResourceShipmentOrders))
	}
}

func TestImportRowsModeReportsBackendRejections(t *testing.T) {
	ts := newTestServer(t)
	ts.seedMasterData(t)
	token := ts.login(t, "ops")

	ts.fake.FailNextWithBody(http.MethodPost, "/shipment-orders", http.StatusUnprocessableEntity,
		`{"message":"Validation failed","errors":{"order_number":["Order number already exists."]}}`)

	resp := ts.upload(t, "?mode=rows", token, workbook(t, validOrderRow("SO-1"), validOrderRow("SO-2")))
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.status, resp.body)
	}
	var result ImportResult
	resp.decode(t, &result)
	if result.Created != 1 || result.Failed != 1 {
		t.Fatalf("result = %+v", result)
	}
	if e := result.Errors[0]; e.Row != 2 || e.Column != "order_number" || e.Message != "Order number already exists." {
		t.Errorf("error = %+v", e)
	}
}

func TestImportUploadMode(t *testing.T) {
	ts := newTestServer(t)
	ts.fake.UploadResult = models.UploadResult{
		Created: 1,
		Failed:  1,
		Errors:  []models.UploadError{{Row: 3, Field: "customer", Message: "Unknown customer"}},
	}
	token := ts.login(t, "ops")

	data := workbook(t, validOrderRow("SO-1"), validOrderRow("SO-2"))
	resp := ts.upload(t, "", token, data)
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.status, resp.body)
	}
	var result ImportResult
	resp.decode(t, &result)
	if result.Mode != ImportModeUpload || result.Created != 1 || result.Failed != 1 || len(result.Errors) != 1 {
		t.Errorf("result = %+v", result)
	}

	uploads := ts.fake.Uploads()
	if len(uploads) != 1 || !bytes.Equal(uploads[0], data) {
		t.Errorf("backend received %d uploads", len(uploads))
	}
}

func TestImportUploadModeRejectsInvalidRows(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "ops")

	bad := validOrderRow("SO-2")
	bad[7] = "lots"
	resp := ts.upload(t, "", token, workbook(t, validOrderRow("SO-1"), bad))
	if resp.status != http.StatusUnprocessableEntity || resp.code() != ErrCodeValidationFailed {
		t.Fatalf("got %d %s", resp.status, resp.code())
	}
	if len(ts.fake.Uploads()) != 0 {
		t.Error("invalid workbook reached the backend")
	}
}

func TestImportBadRequests(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "ops")

	tests := []struct {
		name       string
		query      string
		data       []byte
		wantStatus int
		wantCode   string
	}{
		{"unknown mode", "?mode=bulk", workbook(t), http.StatusBadRequest, ErrCodeBadRequest},
		{"not a workbook", "", []byte("hello"), http.StatusBadRequest, ErrCodeInvalidFile},
		{"too large", "", bytes.Repeat([]byte("x"), 3<<19), http.StatusRequestEntityTooLarge, ErrCodeInvalidFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.upload(t, tt.query, token, tt.data)
			if resp.status != tt.wantStatus || resp.code() != tt.wantCode {
				t.Errorf("got %d %s, want %d %s", resp.status, resp.code(), tt.wantStatus, tt.wantCode)
			}
		})
	}

	noFile := ts.do(t, http.MethodPost, "/api/v1/shipment-orders/import", token, strings.NewReader(""), "multipart/form-data; boundary=x")
	if noFile.status != http.StatusBadRequest {
		t.Errorf("missing file status = %d", noFile.status)
	}
}

func TestExportShipments(t *testing.T) {
	ts := newTestServer(t)
	ts.seedMasterData(t)
	ts.fake.Seed(t, backend.ResourceShipmentOrders,
		models.ShipmentOrder{OrderNumber: "SO-1", CustomerID: 101, POLID: 104, PODID: 105, ContainerTypeID: 106, Quantity: 2, Status: models.ShipmentBooked, IsActive: true},
		models.ShipmentOrder{OrderNumber: "SO-2", CustomerID: 101, POLID: 104, PODID: 105, ContainerTypeID: 106, Quantity: 1, Status: models.ShipmentDraft, IsActive: true},
	)
	token := ts.login(t, "ops")

	resp := ts.get(t, "/api/v1/shipment-orders/export?status=booked", token)
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.status, resp.body)
	}
	if ct := resp.header.Get("Content-Type"); ct != backend.XLSXContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.header.Get("Content-Disposition"); !strings.Contains(cd, "shipment-orders-") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	parsed, err := excel.Parse(bytes.NewReader(resp.body), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed.Rows) != 1 || parsed.Rows[0].OrderNumber != "SO-1" || parsed.Rows[0].CustomerCode != "CUST01" || parsed.Rows[0].POL != "CNSHA" {
		t.Errorf("rows = %+v", parsed.Rows)
	}
}

func TestExportShipmentsFlagsTruncation(t *testing.T) {
	ts := newTestServer(t)
	ts.seedMasterData(t)
	ts.fake.Seed(t, backend.ResourceShipmentOrders,
		models.ShipmentOrder{OrderNumber: "SO-1", CustomerID: 101, POLID: 104, PODID: 105, ContainerTypeID: 106, Quantity: 2, Status: models.ShipmentBooked, IsActive: true},
		models.ShipmentOrder{OrderNumber: "SO-2", CustomerID: 101, POLID: 104, PODID: 105, ContainerTypeID: 106, Quantity: 1, Status: models.ShipmentDraft, IsActive: true},
	)
	token := ts.login(t, "ops")

	resp := ts.get(t, "/api/v1/shipment-orders/export", token)
	if resp.header.Get(HeaderExportTruncated) != "" || resp.header.Get(HeaderLookupsTruncated) != "" {
		t.Fatalf("full export flagged: %v", resp.header)
	}

	ts.cfg.Import.ExportLimit = 1
	ts.cfg.Import.LookupLimit = 1
	resp = ts.get(t, "/api/v1/shipment-orders/export", token)
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.status, resp.body)
	}
	if got := resp.header.Get(HeaderExportTruncated); got != "1" {
		t.Errorf("%s = %q, want 1", HeaderExportTruncated, got)
	}
	if got := resp.header.Get(HeaderLookupsTruncated); got != "ports" {
		t.Errorf("%s = %q, want ports", HeaderLookupsTruncated, got)
	}
	parsed, err := excel.Parse(bytes.NewReader(resp.body), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed.Rows) != 1 {
		t.Errorf("rows = %d, want 1", len(parsed.Rows))
	}
}

func TestImportDryRunReportsTruncatedLookups(t *testing.T) {
	ts := newTestServer(t)
	ts.seedMasterData(t)
	ts.cfg.Import.LookupLimit = 1
	token := ts.login(t, "ops")

	resp := ts.upload(t, "?dry_run=true", token, workbook(t, validOrderRow("SO-1")))
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.status, resp.body)
	}
	var result ImportResult
	resp.decode(t, &result)
	if len(result.TruncatedLookups) != 1 || result.TruncatedLookups[0] != "ports" {
		t.Errorf("truncated = %v", result.TruncatedLookups)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, "only the first 1 ports were loaded") {
		t.Errorf("errors = %+v", result.Errors)
	}
}

func TestImportResolvesSharedPortCodes(t *testing.T) {
	ts := newTestServer(t)
	ts.seedMasterData(t)
	// Rotterdam is also a loading port, Shanghai also a discharge port.
	ts.fake.Seed(t, backend.ResourcePorts,
		models.Port{ID: 110, Code: "NLRTM", Name: "Rotterdam", Kind: models.PortKindPOL, IsActive: true},
		models.Port{ID: 111, Code: "CNSHA", Name: "Shanghai", Kind: models.PortKindPOD, IsActive: true},
	)
	token := ts.login(t, "ops")

	reverse := validOrderRow("SO-2")
	reverse[4], reverse[5] = "NLRTM", "CNSHA"
	resp := ts.upload(t, "?mode=rows", token, workbook(t, validOrderRow("SO-1"), reverse))
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.status, resp.body)
	}
	var result ImportResult
	resp.decode(t, &result)
	if result.Created != 2 || len(result.Errors) != 0 {
		t.Fatalf("result = %+v", result)
	}

	want := map[string][2]float64{"SO-1": {104, 105}, "SO-2": {110, 111}}
	for i := int64(1); i <= 500; i++ {
		rec, ok := ts.fake.Record(backend.ResourceShipmentOrders, i)
		if !ok {
			continue
		}
		number, _ := rec["order_number"].(string)
		ports, ok := want[number]
		if !ok {
			continue
		}
		if rec["pol_id"] != ports[0] || rec["pod_id"] != ports[1] {
			t.Errorf("%s ports = %v/%v, want %v", number, rec["pol_id"], rec["pod_id"], ports)
		}
		delete(want, number)
	}
	if len(want) != 0 {
		t.Errorf("orders not created: %v", want)
	}
}

func TestShipmentTemplate(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "ops")

	resp := ts.get(t, "/api/v1/shipment-orders/template", token)
	if resp.status != http.StatusOK || string(resp.body) != "PK-template" {
		t.Errorf("backend template: %d %q", resp.status, resp.body)
	}

	ts.fake.FailNext(http.MethodGet, "/shipment-orders/template", http.StatusNotFound, "no template")
	resp = ts.get(t, "/api/v1/shipment-orders/template", token)
	if resp.status != http.StatusOK {
		t.Fatalf("fallback status = %d", resp.status)
	}
	if _, err := excel.Parse(bytes.NewReader(resp.body), 0); err != nil {
		t.Errorf("fallback template does not parse: %v", err)
	}

	ts.fake.FailNext(http.MethodGet, "/shipment-orders/template", http.StatusInternalServerError, "boom")
	resp = ts.get(t, "/api/v1/shipment-orders/template", token)
	if resp.status != http.StatusBadGateway || resp.code() != ErrCodeBackendError {
		t.Errorf("backend failure: %d %s", resp.status, resp.code())
	}
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t)
	ts.seedMasterData(t)
	ts.fake.Seed(t, backend.ResourceShipmentOrders,
		models.ShipmentOrder{OrderNumber: "SO-1", Status: models.ShipmentBooked, IsActive: true},
		models.ShipmentOrder{OrderNumber: "SO-2", Status: models.ShipmentBooked, IsActive: true},
		models.ShipmentOrder{OrderNumber: "SO-3", Status: models.ShipmentDraft, IsActive: true},
		models.ShipmentOrder{OrderNumber: "SO-4", Status: models.ShipmentDraft, IsActive: false},
	)
	token := ts.login(t, "ops")

	resp := ts.get(t, "/api/v1/dashboard", token)
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.status, resp.body)
	}
	var dash Dashboard
	resp.decode(t, &dash)

	if dash.ActiveCounts[backend.ResourceCarriers] != 1 || dash.ActiveCounts[backend.ResourcePorts] != 2 {
		t.Errorf("active counts = %v", dash.ActiveCounts)
	}
	if dash.ActiveCounts[backend.ResourceShipmentOrders] != 3 {
		t.Errorf("active orders = %d, want 3", dash.ActiveCounts[backend.ResourceShipmentOrders])
	}
	if _, ok := dash.ActiveCounts[backend.ResourceUsers]; ok {
		t.Error("users counted without user.view")
	}
	if dash.ShipmentsByStatus[models.ShipmentBooked] != 2 || dash.ShipmentsByStatus[models.ShipmentDraft] != 1 {
		t.Errorf("by status = %v", dash.ShipmentsByStatus)
	}
	if len(dash.RecentShipments) != 4 || dash.RecentShipments[0].OrderNumber != "SO-4" {
		t.Errorf("recent = %+v", dash.RecentShipments)
	}
}
