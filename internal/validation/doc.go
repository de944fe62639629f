// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

// Package validation wraps go-playground/validator v10 for console forms and
// query parameters.
//
// A single validator instance is shared by the whole process. It reports
// field names by their JSON tag so that errors can be attached to the same
// keys the browser sent, and it registers the booking-specific tags below.
//
//	scac             carrier code, 2-4 upper-case letters
//	locode           UN/LOCODE, 5 characters
//	container_code   ISO size/type shorthand such as 20GP or 40HC
//	shipment_status  one of draft, booked, confirmed, shipped, cancelled
//	port_kind        POL or POD
//
// ValidateStruct returns nil or a *RequestValidationError. Cross-field rules
// that tags cannot express are appended with Add, and the combined result is
// rendered either as FieldMessages (field -> message) or ToAPIError.
//
//	type CarrierForm struct {
//	    Name string `json:"name" validate:"required,max=120"`
//	    Code string `json:"code" validate:"required,scac"`
//	}
//
//	if verr := validation.ValidateStruct(&form); verr != nil {
//	    return verr.FieldMessages()
//	}
package validation
