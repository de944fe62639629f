// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

// Package models defines the JSON data transfer objects exchanged with the
// booking backend and served by the console API.
//
// Every entity carries a numeric ID, an is_active flag and the audit block
// (created_by, modified_by, created_at, modified_at). Foreign keys are plain
// IDs: Customer.CompanyID, ShipmentOrder.CustomerID and
// ContainerThreshold.ContainerTypeID/PortID. Records are soft-deleted by
// toggling is_active; the backend owns persistence and uniqueness.
package models
