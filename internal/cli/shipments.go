// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/config"
	"github.com/tomtom215/vendorbooking/internal/excel"
	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/models"
)

const (
	fileFlag = "file"

	defaultExportFile   = "shipment-orders.xlsx"
	defaultTemplateFile = "shipment-orders-template.xlsx"
)

func newShipmentsCommand(opts *globalOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "shipments",
		Short: "Export, import and template shipment order spreadsheets",
	}
	cmd.PersistentFlags().StringVar(&out, "out", "", "Output file for export and template")

	cmd.AddCommand(
		newExportCommand(opts, &out),
		newImportCommand(opts),
		newTemplateCommand(opts, &out),
	)
	return cmd
}

func newExportCommand(opts *globalOptions, out *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write every shipment order to an xlsx file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			svc, err := opts.services()
			if err != nil {
				return err
			}

			var (
				orders    []models.ShipmentOrder
				truncated bool
				lk        *excel.Lookups
			)
			limit := cfg.Import.Exports()
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				orders, truncated, err = svc.ShipmentOrders.ListCapped(ctx, models.ListParams{}, limit)
				return err
			})
			g.Go(func() error {
				var err error
				lk, err = excel.LoadLookups(ctx, svc, cfg.Import.Lookups())
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}
			if truncated {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: export stopped at %d orders (IMPORT_EXPORT_LIMIT)\n", limit)
			}
			warnTruncated(cmd.ErrOrStderr(), lk)

			data, err := excel.Export(orders, lk)
			if err != nil {
				return err
			}
			path := outPath(*out, defaultExportFile)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d shipment orders to %s\n", len(orders), path)
			return nil
		},
	}
}

func newTemplateCommand(opts *globalOptions, out *string) *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Download the shipment order upload template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.services()
			if err != nil {
				return err
			}

			data, err := svc.DownloadShipmentTemplate(cmd.Context())
			if err != nil || len(data) == 0 {
				if err != nil && backend.Classify(err) != backend.KindNotFound {
					return err
				}
				logging.Debug().Msg("Backend has no template, using the built-in one")
				if data, err = excel.Template(); err != nil {
					return err
				}
			}

			path := outPath(*out, defaultTemplateFile)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", path)
			return nil
		},
	}
}

// dryRunReport is the JSON form of an import dry run.
type dryRunReport struct {
	Total  int              `json:"total"`
	Valid  int              `json:"valid"`
	Errors []excel.RowError `json:"errors"`
}

func newImportCommand(opts *globalOptions) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		fileFlag: &cobraflags.StringFlag{
			Name:  fileFlag,
			Value: "",
			Usage: "Shipment order workbook to import",
		},
	}
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upload a shipment order workbook to the backend",
		Long: `Upload a shipment order workbook to the backend.

With --dry-run the workbook is parsed and checked against the current
master data locally and nothing is uploaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flags[fileFlag].GetString()
			if path == "" {
				return errors.New("--file is required")
			}
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			data, err := readWorkbook(path, cfg.Import.MaxFileSize)
			if err != nil {
				return err
			}
			svc, err := opts.services()
			if err != nil {
				return err
			}

			if dryRun {
				report, err := checkWorkbook(cmd, svc, data, cfg.Import)
				if err != nil {
					return err
				}
				if err := printDryRun(cmd.OutOrStdout(), opts.output, report); err != nil {
					return err
				}
				if len(report.Errors) > 0 {
					return fmt.Errorf("%d of %d rows are invalid", report.Total-report.Valid, report.Total)
				}
				return nil
			}

			result, err := svc.UploadShipmentFile(cmd.Context(), path, data)
			if err != nil {
				return err
			}
			if err := printUpload(cmd.OutOrStdout(), opts.output, result); err != nil {
				return err
			}
			if result.Failed > 0 {
				return fmt.Errorf("backend rejected %d rows", result.Failed)
			}
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate locally without uploading")
	return cmd
}

func readWorkbook(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("%s is %d bytes, the limit is %d", path, info.Size(), maxSize)
	}
	return os.ReadFile(path)
}

func checkWorkbook(cmd *cobra.Command, svc *backend.Services, data []byte, limits config.ImportConfig) (*dryRunReport, error) {
	parsed, err := excel.Parse(bytes.NewReader(data), limits.MaxRows)
	if err != nil {
		return nil, err
	}
	report := &dryRunReport{Total: parsed.Total, Errors: parsed.Errors}

	if len(parsed.Rows) > 0 {
		lk, err := excel.LoadLookups(cmd.Context(), svc, limits.Lookups())
		if err != nil {
			return nil, err
		}
		warnTruncated(cmd.ErrOrStderr(), lk)
		resolved, rowErrs := excel.Resolve(parsed.Rows, lk)
		report.Valid = len(resolved)
		report.Errors = append(report.Errors, rowErrs...)
	}
	sort.SliceStable(report.Errors, func(i, j int) bool { return report.Errors[i].Row < report.Errors[j].Row })
	if report.Errors == nil {
		report.Errors = []excel.RowError{}
	}
	return report, nil
}

func printDryRun(w io.Writer, format string, report *dryRunReport) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "%d rows checked, %d valid\n", report.Total, report.Valid)
	if len(report.Errors) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tCOLUMN\tMESSAGE")
	for _, e := range report.Errors {
		column := e.Column
		if column == "" {
			column = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Row, column, e.Message)
	}
	return tw.Flush()
}

func printUpload(w io.Writer, format string, result *models.UploadResult) error {
	if format == OutputJSON {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "Created %d shipment orders, %d failed\n", result.Created, result.Failed)
	if len(result.Errors) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tFIELD\tMESSAGE")
	for _, e := range result.Errors {
		field := e.Field
		if field == "" {
			field = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Row, field, e.Message)
	}
	return tw.Flush()
}

func outPath(out, fallback string) string {
	if out == "" {
		return fallback
	}
	return out
}

func warnTruncated(w io.Writer, lk *excel.Lookups) {
	if names := lk.Truncated(); len(names) > 0 {
		fmt.Fprintf(w, "warning: only part of the %s were loaded (IMPORT_LOOKUP_LIMIT); their codes may be reported as unknown\n", strings.Join(names, ", "))
	}
}
