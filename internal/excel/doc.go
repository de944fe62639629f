// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

// Package excel reads and writes shipment order spreadsheets with excelize.
//
// The sheet layout is fixed: a header row followed by one order per row.
//
//	Order Number | Customer Code | Carrier Code | Supplier Code | POL | POD |
//	Container Type | Quantity | Cargo Ready Date | ETD | ETA | Status | Remarks
//
// Export and Template write that layout. Parse reads it back, checking the
// header and each cell, and Resolve turns the codes in parsed rows into
// backend IDs using Lookups built from the master data lists. Problems with
// individual rows are collected as RowError values so a whole file can be
// previewed at once; only structural problems (no sheet, wrong header, too
// many rows) abort a parse.
package excel
