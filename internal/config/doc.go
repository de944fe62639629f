// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

// Package config loads console configuration with koanf.
//
// Sources are layered, later ones overriding earlier ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file, located through CONFIG_PATH or DefaultConfigPaths
//  3. Environment variables, mapped explicitly in envTransformFunc
//
// Example config.yaml:
//
//	server:
//	  port: 8080
//	backend:
//	  base_url: https://booking.example.com/api/v1
//	  timeout: 10s
//	security:
//	  jwt_secret: change-me-to-at-least-32-characters
//	  session_store: badger
//	  session_store_path: /data/sessions
//
// Load validates the whole configuration for the server. LoadForCLI only checks
// the backend and logging sections because vbtctl never issues console tokens.
package config
