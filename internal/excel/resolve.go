// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package excel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/vendorbooking/internal/forms"
	"github.com/tomtom215/vendorbooking/internal/models"
)

// ResolvedRow is a spreadsheet row turned into a backend payload.
type ResolvedRow struct {
	Line  int                   `json:"row"`
	Order *models.ShipmentOrder `json:"order"`
}

// formColumns maps form field names back to sheet columns.
var formColumns = map[string]int{
	"order_number":      colOrderNumber,
	"customer_id":       colCustomer,
	"carrier_id":        colCarrier,
	"supplier_id":       colSupplier,
	"pol_id":            colPOL,
	"pod_id":            colPOD,
	"container_type_id": colContainerType,
	"quantity":          colQuantity,
	"cargo_ready_date":  colCargoReady,
	"etd":               colETD,
	"eta":               colETA,
	"status":            colStatus,
	"remarks":           colRemarks,
}

// Resolve maps codes to IDs and applies the shipment order form rules to
// every row. Rows with an unknown code or a failed rule are reported and
// left out of the result.
func Resolve(rows []Row, lk *Lookups) ([]ResolvedRow, []RowError) {
	out := make([]ResolvedRow, 0, len(rows))
	var errs []RowError

	for _, row := range rows {
		var rowErrs []RowError
		lookup := func(x *CodeIndex, col int, code string, required bool) int64 {
			if code == "" {
				if required {
					rowErrs = append(rowErrs, RowError{Row: row.Line, Column: Headers[col], Message: "is required"})
				}
				return 0
			}
			id, ok := x.ID(code)
			if !ok {
				rowErrs = append(rowErrs, RowError{Row: row.Line, Column: Headers[col], Message: unknownCode(x, code)})
			}
			return id
		}
		// A code only known with the other kind resolves anyway so the
		// port kind rule reports it.
		port := func(kind *CodeIndex, col int, code string) int64 {
			if id, ok := kind.ID(code); ok {
				return id
			}
			return lookup(lk.Ports, col, code, true)
		}

		order := &models.ShipmentOrder{
			OrderNumber:     row.OrderNumber,
			CustomerID:      lookup(lk.Customers, colCustomer, row.CustomerCode, true),
			CarrierID:       lookup(lk.Carriers, colCarrier, row.CarrierCode, false),
			SupplierID:      lookup(lk.Suppliers, colSupplier, row.SupplierCode, false),
			POLID:           port(lk.POLs, colPOL, row.POL),
			PODID:           port(lk.PODs, colPOD, row.POD),
			ContainerTypeID: lookup(lk.ContainerTypes, colContainerType, row.ContainerType, true),
			Quantity:        row.Quantity,
			CargoReadyDate:  row.CargoReadyDate,
			ETD:             row.ETD,
			ETA:             row.ETA,
			Status:          row.Status,
			Remarks:         row.Remarks,
			IsActive:        true,
		}

		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}

		form := forms.ShipmentOrderFormFrom(order)
		form.SetPortKinds(lk.PortKind(order.POLID), lk.PortKind(order.PODID))
		if verr := form.Check(); verr != nil {
			errs = append(errs, fieldErrors(row.Line, verr.FieldMessages())...)
			continue
		}
		out = append(out, ResolvedRow{Line: row.Line, Order: form.ToModel()})
	}
	return out, errs
}

func unknownCode(x *CodeIndex, code string) string {
	if x.Capped > 0 {
		return fmt.Sprintf("unknown code %q (only the first %d %s were loaded)", code, x.Capped, x.name)
	}
	return fmt.Sprintf("unknown code %q", code)
}

func fieldErrors(line int, fields map[string]string) []RowError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]RowError, 0, len(names))
	for _, name := range names {
		column := name
		if col, ok := formColumns[name]; ok {
			column = Headers[col]
		}
		out = append(out, RowError{Row: line, Column: column, Message: strings.TrimSpace(fields[name])})
	}
	return out
}
