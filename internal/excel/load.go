// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package excel

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/models"
)

// LoadLookups loads the master data behind spreadsheet codes concurrently.
// limit caps each collection; a capped index reports it in its unknown-code
// errors and through Lookups.Truncated.
func LoadLookups(ctx context.Context, svc *backend.Services, limit int) (*Lookups, error) {
	var (
		customers []models.Customer
		carriers  []models.Carrier
		suppliers []models.Supplier
		ports     []models.Port
		types     []models.ContainerType

		capped [5]bool
	)
	all := models.ListParams{PageSize: models.MaxPageSize}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { customers, capped[0], err = svc.Customers.ListCapped(ctx, all, limit); return })
	g.Go(func() (err error) { carriers, capped[1], err = svc.Carriers.ListCapped(ctx, all, limit); return })
	g.Go(func() (err error) { suppliers, capped[2], err = svc.Suppliers.ListCapped(ctx, all, limit); return })
	g.Go(func() (err error) { ports, capped[3], err = svc.Ports.ListCapped(ctx, all, limit); return })
	g.Go(func() (err error) { types, capped[4], err = svc.ContainerTypes.ListCapped(ctx, all, limit); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load lookups: %w", err)
	}

	lk := NewLookups(customers, carriers, suppliers, ports, types)
	for i, x := range []*CodeIndex{lk.Customers, lk.Carriers, lk.Suppliers, lk.Ports, lk.ContainerTypes} {
		if capped[i] {
			x.Capped = limit
			if x == lk.Ports {
				lk.POLs.Capped, lk.PODs.Capped = limit, limit
			}
		}
	}
	return lk, nil
}
