// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package models

import (
	"fmt"
	"strconv"
	"time"
)

// ShipmentStatus is the booking state reported by the backend.
type ShipmentStatus string

const (
	ShipmentDraft     ShipmentStatus = "draft"
	ShipmentBooked    ShipmentStatus = "booked"
	ShipmentConfirmed ShipmentStatus = "confirmed"
	ShipmentShipped   ShipmentStatus = "shipped"
	ShipmentCancelled ShipmentStatus = "cancelled"
)

// ShipmentStatuses lists every status in display order.
var ShipmentStatuses = []ShipmentStatus{
	ShipmentDraft, ShipmentBooked, ShipmentConfirmed, ShipmentShipped, ShipmentCancelled,
}

// Valid reports whether s is a known status.
func (s ShipmentStatus) Valid() bool {
	for _, v := range ShipmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ShipmentOrder is a booking request for containers between a POL and a POD.
type ShipmentOrder struct {
	ID              int64          `json:"id"`
	OrderNumber     string         `json:"order_number"`
	CustomerID      int64          `json:"customer_id"`
	CarrierID       int64          `json:"carrier_id,omitempty"`
	SupplierID      int64          `json:"supplier_id,omitempty"`
	POLID           int64          `json:"pol_id"`
	PODID           int64          `json:"pod_id"`
	ContainerTypeID int64          `json:"container_type_id"`
	Quantity        int            `json:"quantity"`
	CargoReadyDate  *Date          `json:"cargo_ready_date,omitempty"`
	ETD             *Date          `json:"etd,omitempty"`
	ETA             *Date          `json:"eta,omitempty"`
	Status          ShipmentStatus `json:"status"`
	Remarks         string         `json:"remarks,omitempty"`
	IsActive        bool           `json:"is_active"`
	Audit
}

func (o ShipmentOrder) EntityID() int64 { return o.ID }
func (o ShipmentOrder) Active() bool    { return o.IsActive }

// DateLayout is the wire format of Date.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day, encoded as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.Format(DateLayout))), nil
}

// UnmarshalJSON accepts YYYY-MM-DD, RFC 3339 timestamps and null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	unq, err := strconv.Unquote(s)
	if err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if t, err := time.Parse(DateLayout, unq); err == nil {
		*d = Date{t}
		return nil
	}
	t, err := time.Parse(time.RFC3339, unq)
	if err != nil {
		return fmt.Errorf("invalid date %q", unq)
	}
	*d = NewDate(t)
	return nil
}
