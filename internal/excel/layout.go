// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package excel

import (
	"errors"
	"strings"

	"github.com/tomtom215/vendorbooking/internal/models"
)

var (
	// ErrHeaderMismatch means row 1 is not the expected header.
	ErrHeaderMismatch = errors.New("excel: header row does not match the shipment order layout")
	// ErrTooManyRows means the sheet holds more data rows than allowed.
	ErrTooManyRows = errors.New("excel: too many rows")
	// ErrEmptyWorkbook means the active sheet has no rows at all.
	ErrEmptyWorkbook = errors.New("excel: workbook is empty")
)

// SheetName is the name given to exported sheets.
const SheetName = "Shipment Orders"

// Column positions, zero based.
const (
	colOrderNumber = iota
	colCustomer
	colCarrier
	colSupplier
	colPOL
	colPOD
	colContainerType
	colQuantity
	colCargoReady
	colETD
	colETA
	colStatus
	colRemarks
	columnCount
)

// Headers is the expected header row.
var Headers = []string{
	"Order Number",
	"Customer Code",
	"Carrier Code",
	"Supplier Code",
	"POL",
	"POD",
	"Container Type",
	"Quantity",
	"Cargo Ready Date",
	"ETD",
	"ETA",
	"Status",
	"Remarks",
}

// RowError reports a problem with one spreadsheet row. Row is the 1-based
// sheet row number, so the header is row 1.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// Row is one parsed, not yet resolved, order line.
type Row struct {
	Line           int                   `json:"row"`
	OrderNumber    string                `json:"order_number"`
	CustomerCode   string                `json:"customer_code"`
	CarrierCode    string                `json:"carrier_code,omitempty"`
	SupplierCode   string                `json:"supplier_code,omitempty"`
	POL            string                `json:"pol"`
	POD            string                `json:"pod"`
	ContainerType  string                `json:"container_type"`
	Quantity       int                   `json:"quantity"`
	CargoReadyDate *models.Date          `json:"cargo_ready_date,omitempty"`
	ETD            *models.Date          `json:"etd,omitempty"`
	ETA            *models.Date          `json:"eta,omitempty"`
	Status         models.ShipmentStatus `json:"status"`
	Remarks        string                `json:"remarks,omitempty"`
}

// Lookups maps master data codes to IDs and back.
type Lookups struct {
	Customers      *CodeIndex
	Carriers       *CodeIndex
	Suppliers      *CodeIndex
	ContainerTypes *CodeIndex

	// Ports holds every port. One LOCODE is often both a POL and a POD
	// record, so the POL and POD columns resolve through POLs and PODs.
	Ports *CodeIndex
	POLs  *CodeIndex
	PODs  *CodeIndex

	portKinds map[int64]models.PortKind
}

// NewLookups indexes the given master data.
func NewLookups(customers []models.Customer, carriers []models.Carrier, suppliers []models.Supplier, ports []models.Port, types []models.ContainerType) *Lookups {
	lk := &Lookups{
		Customers:      NewCodeIndex("customers"),
		Carriers:       NewCodeIndex("carriers"),
		Suppliers:      NewCodeIndex("suppliers"),
		ContainerTypes: NewCodeIndex("container types"),
		Ports:          NewCodeIndex("ports"),
		POLs:           NewCodeIndex("ports"),
		PODs:           NewCodeIndex("ports"),
		portKinds:      make(map[int64]models.PortKind, len(ports)),
	}
	for _, c := range customers {
		lk.Customers.Add(c.ID, c.Code, c.IsActive)
	}
	for _, c := range carriers {
		lk.Carriers.Add(c.ID, c.Code, c.IsActive)
	}
	for _, s := range suppliers {
		lk.Suppliers.Add(s.ID, s.Code, s.IsActive)
	}
	for _, p := range ports {
		lk.Ports.Add(p.ID, p.Code, p.IsActive)
		lk.portKinds[p.ID] = p.Kind
		switch p.Kind {
		case models.PortKindPOL:
			lk.POLs.Add(p.ID, p.Code, p.IsActive)
		case models.PortKindPOD:
			lk.PODs.Add(p.ID, p.Code, p.IsActive)
		}
	}
	for _, t := range types {
		lk.ContainerTypes.Add(t.ID, t.Code, t.IsActive)
	}
	return lk
}

// PortKind returns the kind of a known port, or "".
func (lk *Lookups) PortKind(id int64) models.PortKind {
	return lk.portKinds[id]
}

// Truncated names the collections that hit the load limit.
func (lk *Lookups) Truncated() []string {
	var out []string
	for _, x := range []*CodeIndex{lk.Customers, lk.Carriers, lk.Suppliers, lk.Ports, lk.ContainerTypes} {
		if x.Capped > 0 {
			out = append(out, x.name)
		}
	}
	return out
}

// CodeIndex is a two-way, case-insensitive code <-> ID map. When two
// records share a code, the first active one wins.
type CodeIndex struct {
	// Capped is the load limit when records past it were left out.
	Capped int

	name   string
	byID   map[int64]string
	byCode map[string]int64
	active map[int64]bool
}

// NewCodeIndex returns an empty index for the named collection.
func NewCodeIndex(name string) *CodeIndex {
	return &CodeIndex{
		name:   name,
		byID:   make(map[int64]string),
		byCode: make(map[string]int64),
		active: make(map[int64]bool),
	}
}

// Add records id under code.
func (x *CodeIndex) Add(id int64, code string, active bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return
	}
	x.byID[id] = code
	x.active[id] = active

	key := strings.ToUpper(code)
	if prev, ok := x.byCode[key]; ok && (x.active[prev] || !active) {
		return
	}
	x.byCode[key] = id
}

// ID returns the ID registered for code.
func (x *CodeIndex) ID(code string) (int64, bool) {
	id, ok := x.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return id, ok
}

// Code returns the code registered for id.
func (x *CodeIndex) Code(id int64) (string, bool) {
	c, ok := x.byID[id]
	return c, ok
}

// Len returns the number of codes.
func (x *CodeIndex) Len() int { return len(x.byID) }
