// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package excel

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/vendorbooking/internal/models"
)

// Export writes orders as an xlsx workbook. IDs without a code in lk are
// written as "#<id>".
func Export(orders []models.ShipmentOrder, lk *Lookups) ([]byte, error) {
	f, sheet, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	for i := range orders {
		if err := writeRow(f, sheet, i+2, orderRow(&orders[i], lk)); err != nil {
			return nil, err
		}
	}
	return finish(f)
}

// Template writes the header plus one example row.
func Template() ([]byte, error) {
	f, sheet, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	example := []interface{}{
		"SO-0001", "CUST01", "MAEU", "SUP01", "CNSHA", "NLRTM", "40HC", 2,
		"2026-01-15", "2026-01-20", "2026-02-25", string(models.ShipmentDraft), "example row, delete before import",
	}
	if err := writeRow(f, sheet, 2, example); err != nil {
		return nil, err
	}
	return finish(f)
}

func newWorkbook() (*excelize.File, string, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetName); err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("rename sheet: %w", err)
	}
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(Headers), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Headers))
	_ = f.SetColWidth(sheet, "A", lastCol, 18)
	_ = f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return f, sheet, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func finish(f *excelize.File) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func orderRow(o *models.ShipmentOrder, lk *Lookups) []interface{} {
	return []interface{}{
		o.OrderNumber,
		codeOf(lk.Customers, o.CustomerID),
		codeOf(lk.Carriers, o.CarrierID),
		codeOf(lk.Suppliers, o.SupplierID),
		codeOf(lk.Ports, o.POLID),
		codeOf(lk.Ports, o.PODID),
		codeOf(lk.ContainerTypes, o.ContainerTypeID),
		o.Quantity,
		dateString(o.CargoReadyDate),
		dateString(o.ETD),
		dateString(o.ETA),
		string(o.Status),
		o.Remarks,
	}
}

func codeOf(x *CodeIndex, id int64) string {
	if id == 0 {
		return ""
	}
	if code, ok := x.Code(id); ok {
		return code
	}
	return "#" + strconv.FormatInt(id, 10)
}

func dateString(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
