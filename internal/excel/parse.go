// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package excel

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/vendorbooking/internal/models"
)

// ParseResult holds the rows that parsed cleanly and the errors of those
// that did not.
type ParseResult struct {
	Rows   []Row      `json:"rows"`
	Errors []RowError `json:"errors"`
	// Total counts non-blank data rows, valid or not.
	Total int `json:"total"`
}

// Valid reports whether every row parsed.
func (r *ParseResult) Valid() bool { return len(r.Errors) == 0 }

// Parse reads a shipment order workbook from r. maxRows <= 0 disables the
// row limit.
func Parse(r io.Reader, maxRows int) (*ParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	res := &ParseResult{Rows: []Row{}, Errors: []RowError{}}
	for i, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		res.Total++
		if maxRows > 0 && res.Total > maxRows {
			return nil, fmt.Errorf("%w: more than %d data rows", ErrTooManyRows, maxRows)
		}

		row, errs := parseRow(i+2, cells, date1904)
		if len(errs) > 0 {
			res.Errors = append(res.Errors, errs...)
			continue
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func checkHeader(cells []string) error {
	for i, want := range Headers {
		got := ""
		if i < len(cells) {
			got = strings.TrimSpace(cells[i])
		}
		if !strings.EqualFold(got, want) {
			col, _ := excelize.ColumnNumberToName(i + 1)
			return fmt.Errorf("%w: column %s is %q, want %q", ErrHeaderMismatch, col, got, want)
		}
	}
	return nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(line int, cells []string, date1904 bool) (Row, []RowError) {
	cell := func(col int) string {
		if col < len(cells) {
			return strings.TrimSpace(cells[col])
		}
		return ""
	}

	var errs []RowError
	fail := func(col int, msg string) {
		errs = append(errs, RowError{Row: line, Column: Headers[col], Message: msg})
	}
	required := func(col int) string {
		v := cell(col)
		if v == "" {
			fail(col, "is required")
		}
		return v
	}

	row := Row{
		Line:          line,
		OrderNumber:   required(colOrderNumber),
		CustomerCode:  required(colCustomer),
		CarrierCode:   cell(colCarrier),
		SupplierCode:  cell(colSupplier),
		POL:           required(colPOL),
		POD:           required(colPOD),
		ContainerType: required(colContainerType),
		Remarks:       cell(colRemarks),
	}

	if v := required(colQuantity); v != "" {
		q, err := parseQuantity(v)
		if err != nil {
			fail(colQuantity, err.Error())
		}
		row.Quantity = q
	}

	for _, d := range []struct {
		col int
		dst **models.Date
	}{
		{colCargoReady, &row.CargoReadyDate},
		{colETD, &row.ETD},
		{colETA, &row.ETA},
	} {
		v := cell(d.col)
		if v == "" {
			continue
		}
		parsed, err := ParseDateCell(v, date1904)
		if err != nil {
			fail(d.col, err.Error())
			continue
		}
		*d.dst = &parsed
	}

	status := models.ShipmentStatus(strings.ToLower(cell(colStatus)))
	if status == "" {
		status = models.ShipmentDraft
	}
	if !status.Valid() {
		fail(colStatus, fmt.Sprintf("unknown status %q", cell(colStatus)))
	}
	row.Status = status

	return row, errs
}

func parseQuantity(v string) (int, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("must be a whole number, got %q", v)
	}
	if f <= 0 {
		return 0, fmt.Errorf("must be positive, got %q", v)
	}
	if f > math.MaxInt32 {
		return 0, fmt.Errorf("is too large")
	}
	return int(f), nil
}

// ParseDateCell accepts YYYY-MM-DD, DD/MM/YYYY and Excel serial day numbers.
func ParseDateCell(v string, date1904 bool) (models.Date, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(models.DateLayout, v); err == nil {
		return models.NewDate(t), nil
	}
	if t, err := time.Parse("02/01/2006", v); err == nil {
		return models.NewDate(t), nil
	}
	if t, err := time.Parse("2/1/2006", v); err == nil {
		return models.NewDate(t), nil
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err == nil {
			return models.NewDate(t), nil
		}
	}
	return models.Date{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or DD/MM/YYYY", v)
}
