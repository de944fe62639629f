// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

// Package testinfra provides test infrastructure shared by package tests.
//
// # Fake Backend
//
// FakeBackend is an in-process stand-in for the booking REST API. It speaks
// the same wire format as the real service: JSON bodies, bearer access
// tokens with refresh rotation, paged list envelopes and 422 validation
// errors keyed by field.
//
//	func TestCarrierList(t *testing.T) {
//	    fake := testinfra.NewFakeBackend(t)
//	    fake.AddUser(models.User{Username: "ops", Privileges: []string{"carriers.view"}}, "secret")
//	    fake.Seed(t, backend.ResourceCarriers, models.Carrier{Code: "MSK", Name: "Maersk"})
//
//	    client, _ := backend.NewClient(&config.BackendConfig{BaseURL: fake.URL(), Timeout: 5 * time.Second})
//	    // ...
//	}
//
// # Fault Injection
//
// FailNext queues an error response for one request, Delay slows a path,
// ExpireAccessTokens forces the next call through the refresh path and
// RevokeRefreshTokens makes that refresh fail. Every request is recorded
// and available from Captures.
package testinfra
