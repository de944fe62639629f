// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package cli

import (
	"fmt"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/models"
)

const searchFlag = "search"

func newListCommand(opts *globalOptions) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		searchFlag: &cobraflags.StringFlag{
			Name:  searchFlag,
			Value: "",
			Usage: "Free text search",
		},
	}

	var (
		page       int
		pageSize   int
		activeOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List one page of a backend collection",
		Long: "List one page of a backend collection.\n\nResources: " +
			strings.Join(backend.ResourceNames, ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.services()
			if err != nil {
				return err
			}
			res, ok := svc.Generic(args[0])
			if !ok {
				return fmt.Errorf("unknown resource %q (want one of: %s)",
					args[0], strings.Join(backend.ResourceNames, ", "))
			}

			params := models.ListParams{
				Page:     page,
				PageSize: pageSize,
				Search:   flags[searchFlag].GetString(),
			}
			if activeOnly {
				active := true
				params.IsActive = &active
			}

			result, err := res.List(cmd.Context(), params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == OutputJSON {
				return writeJSON(out, result)
			}
			if len(result.Items) == 0 {
				fmt.Fprintf(out, "No %s found.\n", args[0])
				return nil
			}
			if err := writeRecordTable(out, result.Items); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nPage %d of %d (%d total)\n", result.Page, result.TotalPages(), result.Total)
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", models.DefaultPageSize, fmt.Sprintf("Rows per page (max %d)", models.MaxPageSize))
	cmd.Flags().BoolVar(&activeOnly, "active-only", false, "Only list active records")
	return cmd
}
