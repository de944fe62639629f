// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Exporter renders events for download.
type Exporter interface {
	Export(events []Event) ([]byte, error)
	ContentType() string
}

// ExporterFor returns the exporter for format: "json" or "cef".
func ExporterFor(format string) (Exporter, bool) {
	switch strings.ToLower(format) {
	case "", "json":
		return JSONExporter{}, true
	case "cef":
		return NewCEFExporter(), true
	}
	return nil, false
}

// JSONExporter writes an indented JSON array.
type JSONExporter struct{}

func (JSONExporter) Export(events []Event) ([]byte, error) {
	if events == nil {
		events = []Event{}
	}
	return json.MarshalIndent(events, "", "  ")
}

func (JSONExporter) ContentType() string { return "application/json" }

// CEFExporter writes one ArcSight Common Event Format line per event:
//
//	CEF:Version|Device Vendor|Device Product|Device Version|Signature ID|Name|Severity|Extension
type CEFExporter struct {
	DeviceVendor  string
	DeviceProduct string
	DeviceVersion string
}

// NewCEFExporter returns an exporter with the console's device fields.
func NewCEFExporter() *CEFExporter {
	return &CEFExporter{
		DeviceVendor:  "VendorBooking",
		DeviceProduct: "BookingConsole",
		DeviceVersion: "1.0",
	}
}

func (e *CEFExporter) ContentType() string { return "text/plain; charset=utf-8" }

func (e *CEFExporter) Export(events []Event) ([]byte, error) {
	lines := make([]string, 0, len(events))
	for i := range events {
		ev := &events[i]
		lines = append(lines, fmt.Sprintf("CEF:0|%s|%s|%s|%s|%s|%d|%s",
			escapeHeader(e.DeviceVendor),
			escapeHeader(e.DeviceProduct),
			escapeHeader(e.DeviceVersion),
			escapeHeader(ev.Type),
			escapeHeader(cefName(ev)),
			cefSeverity(ev),
			extension(ev),
		))
	}
	return []byte(strings.Join(lines, "\n")), nil
}

func cefName(ev *Event) string {
	name := strings.ReplaceAll(ev.Type, "_", " ")
	if ev.Outcome == OutcomeFailure {
		name += " failed"
	}
	return name
}

// cefSeverity maps to the 0-10 CEF scale.
func cefSeverity(ev *Event) int {
	if ev.Severity == SeverityWarning {
		return 5
	}
	return 3
}

func extension(ev *Event) string {
	parts := []string{fmt.Sprintf("rt=%d", ev.Timestamp.UnixMilli())}
	if ev.Username != "" {
		parts = append(parts, "suser="+escapeExt(ev.Username))
	}
	if ev.IPAddress != "" {
		parts = append(parts, "src="+escapeExt(ev.IPAddress))
	}
	parts = append(parts, "outcome="+string(ev.Outcome))
	if ev.Reason != "" {
		parts = append(parts, "reason="+escapeExt(ev.Reason))
	}
	if ev.SessionID != "" {
		parts = append(parts, "cs1Label=session cs1="+escapeExt(ev.SessionID))
	}
	if len(ev.Details) > 0 {
		keys := make([]string, 0, len(ev.Details))
		for k := range ev.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		kv := make([]string, 0, len(keys))
		for _, k := range keys {
			kv = append(kv, k+":"+ev.Details[k])
		}
		parts = append(parts, "msg="+escapeExt(strings.Join(kv, " ")))
	}
	parts = append(parts, "externalId="+escapeExt(ev.ID))
	return strings.Join(parts, " ")
}

func escapeHeader(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "|", `\|`)
	return flatten(s)
}

func escapeExt(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "=", `\=`)
	return flatten(s)
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", " ")
}
