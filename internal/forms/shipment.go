// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package forms

import (
	"strings"

	"github.com/tomtom215/vendorbooking/internal/models"
	"github.com/tomtom215/vendorbooking/internal/validation"
)

// ShipmentOrderForm creates or updates a shipment order.
type ShipmentOrderForm struct {
	OrderNumber     string       `json:"order_number" validate:"required,max=40"`
	CustomerID      int64        `json:"customer_id" validate:"required,gt=0"`
	CarrierID       int64        `json:"carrier_id" validate:"gte=0"`
	SupplierID      int64        `json:"supplier_id" validate:"gte=0"`
	POLID           int64        `json:"pol_id" validate:"required,gt=0"`
	PODID           int64        `json:"pod_id" validate:"required,gt=0"`
	ContainerTypeID int64        `json:"container_type_id" validate:"required,gt=0"`
	Quantity        int          `json:"quantity" validate:"required,min=1,max=999"`
	CargoReadyDate  *models.Date `json:"cargo_ready_date"`
	ETD             *models.Date `json:"etd"`
	ETA             *models.Date `json:"eta"`
	Status          string       `json:"status" validate:"omitempty,shipment_status"`
	Remarks         string       `json:"remarks" validate:"omitempty,max=500"`
	IsActive        *bool        `json:"is_active"`

	polKind, podKind models.PortKind
}

// SetPortKinds records the kinds of the selected ports so Check can verify
// them. Unknown kinds are left empty and skipped.
func (f *ShipmentOrderForm) SetPortKinds(pol, pod models.PortKind) {
	f.polKind, f.podKind = pol, pod
}

func (f *ShipmentOrderForm) Check() *validation.RequestValidationError {
	return check(f, func(verr *validation.RequestValidationError) {
		if f.POLID != 0 && f.POLID == f.PODID {
			verr.Add("pod_id", "Port of discharge must differ from the port of loading")
		}
		if f.ETD != nil && f.ETA != nil && f.ETA.Before(f.ETD.Time) {
			verr.Add("eta", "ETA must not be before ETD")
		}
		if f.CargoReadyDate != nil && f.ETD != nil && f.ETD.Before(f.CargoReadyDate.Time) {
			verr.Add("etd", "ETD must not be before the cargo ready date")
		}
		if f.polKind != "" && f.polKind != models.PortKindPOL {
			verr.Add("pol_id", "Selected port is not a port of loading")
		}
		if f.podKind != "" && f.podKind != models.PortKindPOD {
			verr.Add("pod_id", "Selected port is not a port of discharge")
		}
	})
}

func (f *ShipmentOrderForm) Validate() map[string]string { return messages(f.Check()) }

func (f *ShipmentOrderForm) ToModel() *models.ShipmentOrder {
	status := models.ShipmentStatus(strings.ToLower(strings.TrimSpace(f.Status)))
	if status == "" {
		status = models.ShipmentDraft
	}
	return &models.ShipmentOrder{
		OrderNumber:     strings.TrimSpace(f.OrderNumber),
		CustomerID:      f.CustomerID,
		CarrierID:       f.CarrierID,
		SupplierID:      f.SupplierID,
		POLID:           f.POLID,
		PODID:           f.PODID,
		ContainerTypeID: f.ContainerTypeID,
		Quantity:        f.Quantity,
		CargoReadyDate:  f.CargoReadyDate,
		ETD:             f.ETD,
		ETA:             f.ETA,
		Status:          status,
		Remarks:         strings.TrimSpace(f.Remarks),
		IsActive:        activeOrDefault(f.IsActive),
	}
}

// ShipmentOrderFormFrom fills a form from an existing order, used when a
// spreadsheet row is checked with the same rules as the console form.
func ShipmentOrderFormFrom(o *models.ShipmentOrder) *ShipmentOrderForm {
	active := o.IsActive
	return &ShipmentOrderForm{
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CarrierID:       o.CarrierID,
		SupplierID:      o.SupplierID,
		POLID:           o.POLID,
		PODID:           o.PODID,
		ContainerTypeID: o.ContainerTypeID,
		Quantity:        o.Quantity,
		CargoReadyDate:  o.CargoReadyDate,
		ETD:             o.ETD,
		ETA:             o.ETA,
		Status:          string(o.Status),
		Remarks:         o.Remarks,
		IsActive:        &active,
	}
}
