// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vendorbooking/internal/backend"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// preferredColumns come first in list tables, in this order, when present.
var preferredColumns = []string{"id", "code", "order_number", "name", "kind", "status", "is_active"}

// tableColumns picks the columns of a record table: the preferred ones
// present in any record, then the remaining scalar keys sorted, up to max.
func tableColumns(records []backend.Record, max int) []string {
	present := map[string]bool{}
	for _, r := range records {
		for k, v := range r {
			switch v.(type) {
			case map[string]interface{}, []interface{}:
				continue
			}
			present[k] = true
		}
	}

	cols := make([]string, 0, max)
	for _, c := range preferredColumns {
		if present[c] {
			cols = append(cols, c)
			delete(present, c)
		}
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	for _, k := range rest {
		if len(cols) >= max {
			break
		}
		cols = append(cols, k)
	}
	return cols
}

func writeRecordTable(w io.Writer, records []backend.Record) error {
	cols := tableColumns(records, 8)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, r := range records {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = formatCell(r[c])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	case bool:
		if x {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(x)
	}
}
