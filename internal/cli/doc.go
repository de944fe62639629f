// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

// Package cli implements vbtctl, the operator command line for the booking
// backend. It reuses the console's backend client, token refresh and
// spreadsheet code, so a workbook that passes "vbtctl shipments import
// --dry-run" passes the console's import preview too.
package cli
