// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package excel

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/vendorbooking/internal/models"
)

func testLookups() *Lookups {
	return NewLookups(
		[]models.Customer{{ID: 1, Code: "CUST01"}, {ID: 2, Code: "CUST02"}},
		[]models.Carrier{{ID: 10, Code: "MAEU"}},
		[]models.Supplier{{ID: 20, Code: "SUP01"}},
		[]models.Port{
			{ID: 30, Code: "CNSHA", Kind: models.PortKindPOL},
			{ID: 31, Code: "NLRTM", Kind: models.PortKindPOD},
			{ID: 32, Code: "DEHAM", Kind: models.PortKindPOD},
		},
		[]models.ContainerType{{ID: 40, Code: "40HC"}, {ID: 41, Code: "20GP"}},
	)
}

func mustDate(s string) *models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

// sheet builds a workbook with the standard header and the given rows.
func sheet(t *testing.T, header []string, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	name := f.GetSheetName(f.GetActiveSheetIndex())

	if header != nil {
		h := make([]interface{}, len(header))
		for i, v := range header {
			h[i] = v
		}
		if err := f.SetSheetRow(name, "A1", &h); err != nil {
			t.Fatal(err)
		}
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := r
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExportParseRoundTrip(t *testing.T) {
	t.Parallel()

	orders := []models.ShipmentOrder{
		{
			ID: 1, OrderNumber: "SO-1", CustomerID: 1, CarrierID: 10, SupplierID: 20,
			POLID: 30, PODID: 31, ContainerTypeID: 40, Quantity: 3,
			CargoReadyDate: mustDate("2026-03-01"), ETD: mustDate("2026-03-05"), ETA: mustDate("2026-04-02"),
			Status: models.ShipmentBooked, Remarks: "fragile", IsActive: true,
		},
		{
			ID: 2, OrderNumber: "SO-2", CustomerID: 2, POLID: 30, PODID: 32,
			ContainerTypeID: 41, Quantity: 1, Status: models.ShipmentDraft, IsActive: true,
		},
	}
	lk := testLookups()

	data, err := Export(orders, lk)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	res, err := Parse(bytes.NewReader(data), 100)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !res.Valid() || res.Total != 2 || len(res.Rows) != 2 {
		t.Fatalf("Parse() = %+v", res)
	}

	resolved, errs := Resolve(res.Rows, lk)
	if len(errs) != 0 {
		t.Fatalf("Resolve() errors = %v", errs)
	}
	for i, r := range resolved {
		want := orders[i]
		got := r.Order
		if got.OrderNumber != want.OrderNumber || got.CustomerID != want.CustomerID ||
			got.CarrierID != want.CarrierID || got.SupplierID != want.SupplierID ||
			got.POLID != want.POLID || got.PODID != want.PODID ||
			got.ContainerTypeID != want.ContainerTypeID || got.Quantity != want.Quantity ||
			got.Status != want.Status || got.Remarks != want.Remarks {
			t.Errorf("row %d = %+v, want %+v", i, got, want)
		}
		if r.Line != i+2 {
			t.Errorf("row %d line = %d", i, r.Line)
		}
	}
	first := resolved[0].Order
	if first.ETA == nil || first.ETA.String() != "2026-04-02" || first.CargoReadyDate.String() != "2026-03-01" {
		t.Errorf("dates lost: %+v", first)
	}
	if resolved[1].Order.ETA != nil {
		t.Errorf("empty date should stay nil")
	}
}

func TestExport_UnknownIDs(t *testing.T) {
	t.Parallel()

	data, err := Export([]models.ShipmentOrder{{OrderNumber: "SO-9", CustomerID: 99, POLID: 30, PODID: 31, ContainerTypeID: 40, Quantity: 1}}, testLookups())
	if err != nil {
		t.Fatal(err)
	}
	res, err := Parse(bytes.NewReader(data), 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows[0].CustomerCode != "#99" {
		t.Errorf("CustomerCode = %q, want #99", res.Rows[0].CustomerCode)
	}
	_, errs := Resolve(res.Rows, testLookups())
	if len(errs) != 1 || errs[0].Column != "Customer Code" {
		t.Errorf("Resolve() errors = %v", errs)
	}
}

func TestTemplate(t *testing.T) {
	t.Parallel()

	data, err := Template()
	if err != nil {
		t.Fatalf("Template() error = %v", err)
	}
	res, err := Parse(bytes.NewReader(data), 10)
	if err != nil {
		t.Fatalf("Parse(template) error = %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0].OrderNumber != "SO-0001" || res.Rows[0].Quantity != 2 {
		t.Errorf("template rows = %+v", res.Rows)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if name := f.GetSheetName(f.GetActiveSheetIndex()); name != SheetName {
		t.Errorf("sheet name = %q", name)
	}
}

func TestParse_HeaderMismatch(t *testing.T) {
	t.Parallel()

	bad := append([]string{}, Headers...)
	bad[4] = "Port of Loading"
	_, err := Parse(bytes.NewReader(sheet(t, bad)), 10)
	if !errors.Is(err, ErrHeaderMismatch) {
		t.Fatalf("Parse() = %v, want ErrHeaderMismatch", err)
	}
	if !strings.Contains(err.Error(), "column E") {
		t.Errorf("error should name the column: %v", err)
	}

	short := Headers[:5]
	if _, err := Parse(bytes.NewReader(sheet(t, short)), 10); !errors.Is(err, ErrHeaderMismatch) {
		t.Errorf("short header: %v", err)
	}
}

func TestParse_HeaderCaseAndSpace(t *testing.T) {
	t.Parallel()

	loose := make([]string, len(Headers))
	for i, h := range Headers {
		loose[i] = "  " + strings.ToLower(h) + " "
	}
	res, err := Parse(bytes.NewReader(sheet(t, loose)), 10)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.Total != 0 {
		t.Errorf("Total = %d", res.Total)
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	if _, err := Parse(bytes.NewReader(sheet(t, nil)), 10); !errors.Is(err, ErrEmptyWorkbook) {
		t.Errorf("Parse() = %v, want ErrEmptyWorkbook", err)
	}
	if _, err := Parse(strings.NewReader("not a zip"), 10); err == nil {
		t.Error("garbage input should fail")
	}
}

func TestParse_TooManyRows(t *testing.T) {
	t.Parallel()

	row := []interface{}{"SO-1", "CUST01", "", "", "CNSHA", "NLRTM", "40HC", 1}
	data := sheet(t, Headers, row, row, row)
	if _, err := Parse(bytes.NewReader(data), 2); !errors.Is(err, ErrTooManyRows) {
		t.Errorf("Parse() = %v, want ErrTooManyRows", err)
	}
	if _, err := Parse(bytes.NewReader(data), 3); err != nil {
		t.Errorf("limit equal to rows should pass: %v", err)
	}
}

func TestParse_RowErrors(t *testing.T) {
	t.Parallel()

	data := sheet(t, Headers,
		[]interface{}{"SO-1", "CUST01", "", "", "CNSHA", "NLRTM", "40HC", 2, "01/03/2026", "2026-03-05", 46118},
		[]interface{}{},
		[]interface{}{"SO-2", "CUST01", "", "", "CNSHA", "NLRTM", "40HC", 0, "yesterday"},
		[]interface{}{"", "", "", "", "CNSHA", "NLRTM", "40HC", "2.5", "", "", "", "lost"},
	)
	res, err := Parse(bytes.NewReader(data), 10)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.Total != 3 {
		t.Errorf("Total = %d, blank row should be skipped", res.Total)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("Rows = %+v", res.Rows)
	}

	ok := res.Rows[0]
	if ok.CargoReadyDate.String() != "2026-03-01" {
		t.Errorf("DD/MM/YYYY parsed as %s", ok.CargoReadyDate)
	}
	if ok.ETA.String() != "2026-04-06" {
		t.Errorf("serial 46118 parsed as %s", ok.ETA)
	}
	if ok.Status != models.ShipmentDraft {
		t.Errorf("default status = %q", ok.Status)
	}

	type key struct {
		row    int
		column string
	}
	got := make(map[key]bool)
	for _, e := range res.Errors {
		got[key{e.Row, e.Column}] = true
	}
	for _, want := range []key{
		{4, "Quantity"},
		{4, "Cargo Ready Date"},
		{5, "Order Number"},
		{5, "Customer Code"},
		{5, "Quantity"},
		{5, "Status"},
	} {
		if !got[want] {
			t.Errorf("missing error %+v in %+v", want, res.Errors)
		}
	}
}

func TestResolve_Rules(t *testing.T) {
	t.Parallel()

	lk := testLookups()
	rows := []Row{
		{Line: 2, OrderNumber: "A", CustomerCode: "cust01", POL: "cnsha", POD: "nlrtm", ContainerType: "40hc", Quantity: 1, Status: models.ShipmentDraft},
		{Line: 3, OrderNumber: "B", CustomerCode: "CUST01", CarrierCode: "ZZZZ", POL: "CNSHA", POD: "NLRTM", ContainerType: "40HC", Quantity: 1, Status: models.ShipmentDraft},
		{Line: 4, OrderNumber: "C", CustomerCode: "CUST01", POL: "NLRTM", POD: "CNSHA", ContainerType: "40HC", Quantity: 1, Status: models.ShipmentDraft},
		{Line: 5, OrderNumber: "D", CustomerCode: "CUST01", POL: "CNSHA", POD: "NLRTM", ContainerType: "40HC", Quantity: 1, Status: models.ShipmentDraft,
			ETD: mustDate("2026-05-10"), ETA: mustDate("2026-05-01")},
	}

	resolved, errs := Resolve(rows, lk)
	if len(resolved) != 1 || resolved[0].Line != 2 {
		t.Fatalf("resolved = %+v", resolved)
	}
	if o := resolved[0].Order; o.CustomerID != 1 || o.POLID != 30 || o.PODID != 31 || o.ContainerTypeID != 40 {
		t.Errorf("codes should resolve case-insensitively: %+v", o)
	}

	byRow := make(map[int][]string)
	for _, e := range errs {
		byRow[e.Row] = append(byRow[e.Row], e.Column)
	}
	if len(byRow[3]) != 1 || byRow[3][0] != "Carrier Code" {
		t.Errorf("row 3 errors = %v", byRow[3])
	}
	if len(byRow[4]) != 2 {
		t.Errorf("row 4 should fail both port kinds: %v", byRow[4])
	}
	if len(byRow[5]) != 1 || byRow[5][0] != "ETA" {
		t.Errorf("row 5 errors = %v", byRow[5])
	}
}

func TestResolve_SharedPortCode(t *testing.T) {
	t.Parallel()

	lk := NewLookups(
		[]models.Customer{{ID: 1, Code: "CUST01", IsActive: true}},
		nil, nil,
		[]models.Port{
			{ID: 1, Code: "SGSIN", Kind: models.PortKindPOL, IsActive: true},
			{ID: 2, Code: "SGSIN", Kind: models.PortKindPOD, IsActive: true},
			{ID: 3, Code: "CNSHA", Kind: models.PortKindPOD, IsActive: true},
		},
		[]models.ContainerType{{ID: 40, Code: "40HC", IsActive: true}},
	)
	rows := []Row{
		{Line: 2, OrderNumber: "A", CustomerCode: "CUST01", POL: "SGSIN", POD: "CNSHA", ContainerType: "40HC", Quantity: 1, Status: models.ShipmentDraft},
		{Line: 3, OrderNumber: "B", CustomerCode: "CUST01", POL: "sgsin", POD: "sgsin", ContainerType: "40HC", Quantity: 1, Status: models.ShipmentDraft},
		{Line: 4, OrderNumber: "C", CustomerCode: "CUST01", POL: "CNSHA", POD: "SGSIN", ContainerType: "40HC", Quantity: 1, Status: models.ShipmentDraft},
	}

	resolved, errs := Resolve(rows, lk)
	if len(resolved) != 2 {
		t.Fatalf("resolved = %+v, errors = %+v", resolved, errs)
	}
	if o := resolved[0].Order; o.POLID != 1 || o.PODID != 3 {
		t.Errorf("row 2 ports = %d/%d, want 1/3", o.POLID, o.PODID)
	}
	if o := resolved[1].Order; o.POLID != 1 || o.PODID != 2 {
		t.Errorf("row 3 ports = %d/%d, want 1/2", o.POLID, o.PODID)
	}
	if len(errs) != 1 || errs[0].Row != 4 || errs[0].Column != "POL" {
		t.Errorf("CNSHA is only a POD, errors = %+v", errs)
	}
}

func TestCodeIndex_PrefersActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []models.Carrier
		want    int64
	}{
		{"inactive first", []models.Carrier{{ID: 1, Code: "MAEU"}, {ID: 2, Code: "maeu", IsActive: true}}, 2},
		{"inactive last", []models.Carrier{{ID: 1, Code: "MAEU", IsActive: true}, {ID: 2, Code: "MAEU"}}, 1},
		{"both active", []models.Carrier{{ID: 1, Code: "MAEU", IsActive: true}, {ID: 2, Code: "MAEU", IsActive: true}}, 1},
		{"both inactive", []models.Carrier{{ID: 1, Code: "MAEU"}, {ID: 2, Code: "MAEU"}}, 1},
	}
	for _, tt := range tests {
		lk := NewLookups(nil, tt.records, nil, nil, nil)
		if id, ok := lk.Carriers.ID("MAEU"); !ok || id != tt.want {
			t.Errorf("%s: ID = %d, %v; want %d", tt.name, id, ok, tt.want)
		}
		if code, _ := lk.Carriers.Code(2); !strings.EqualFold(code, "MAEU") {
			t.Errorf("%s: Code(2) = %q", tt.name, code)
		}
	}
}

func TestResolve_CappedLookupsSayWhy(t *testing.T) {
	t.Parallel()

	lk := testLookups()
	lk.Customers.Capped = 2
	_, errs := Resolve([]Row{{Line: 2, OrderNumber: "A", CustomerCode: "CUST99", POL: "CNSHA", POD: "NLRTM", ContainerType: "40HC", Quantity: 1, Status: models.ShipmentDraft}}, lk)
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "only the first 2 customers were loaded") {
		t.Errorf("errors = %+v", errs)
	}
	if got := lk.Truncated(); len(got) != 1 || got[0] != "customers" {
		t.Errorf("Truncated() = %v", got)
	}
	if got := testLookups().Truncated(); len(got) != 0 {
		t.Errorf("uncapped Truncated() = %v", got)
	}
}

func TestParseDateCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2026-03-01", "2026-03-01", true},
		{"01/03/2026", "2026-03-01", true},
		{"1/3/2026", "2026-03-01", true},
		{"46082", "2026-03-01", true},
		{"2026/03/01", "", false},
		{"31/02/2026", "", false},
		{"soon", "", false},
	}
	for _, tt := range tests {
		got, err := ParseDateCell(tt.in, false)
		if (err == nil) != tt.ok {
			t.Errorf("ParseDateCell(%q) error = %v", tt.in, err)
			continue
		}
		if tt.ok && got.String() != tt.want {
			t.Errorf("ParseDateCell(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
