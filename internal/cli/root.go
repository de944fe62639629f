// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/config"
	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/models"
)

// Environment variables read when the matching flag is not set.
const (
	EnvAccessToken  = "VBT_ACCESS_TOKEN"
	EnvRefreshToken = "VBT_REFRESH_TOKEN"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	backendURL   string
	accessToken  string
	refreshToken string
	output       string
	verbose      bool

	cfg *config.Config
}

// NewRootCommand builds the vbtctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "vbtctl",
		Short: "Operate the vendor booking backend from the command line",
		Long: `vbtctl talks to the booking REST backend directly.

Obtain tokens with "vbtctl login", then pass them with --token and
--refresh-token or export them:

  export VBT_ACCESS_TOKEN=...
  export VBT_REFRESH_TOKEN=...

The backend URL comes from --backend-url, BACKEND_URL or config.yaml.

Examples:
  vbtctl login --username ops --password secret
  vbtctl list carriers --search mae
  vbtctl shipments export --out orders.xlsx
  vbtctl shipments import --file orders.xlsx --dry-run`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logging.Init(logging.Config{Level: level, Format: "console", Output: cmd.ErrOrStderr()})

			if opts.accessToken == "" {
				opts.accessToken = os.Getenv(EnvAccessToken)
			}
			if opts.refreshToken == "" {
				opts.refreshToken = os.Getenv(EnvRefreshToken)
			}
			if opts.output != OutputTable && opts.output != OutputJSON {
				return fmt.Errorf("--output must be %q or %q", OutputTable, OutputJSON)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.backendURL, "backend-url", "", "Backend API root (overrides BACKEND_URL)")
	pf.StringVar(&opts.accessToken, "token", "", "Backend access token (or "+EnvAccessToken+")")
	pf.StringVar(&opts.refreshToken, "refresh-token", "", "Backend refresh token (or "+EnvRefreshToken+")")
	pf.StringVarP(&opts.output, "output", "o", OutputTable, "Output format: table or json")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Log backend calls")

	root.AddCommand(
		newLoginCommand(opts),
		newListCommand(opts),
		newShipmentsCommand(opts),
	)
	return root
}

// Execute runs vbtctl with ctx and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCommand()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", describe(err))
		return 1
	}
	return 0
}

// describe prefers the user-facing message of backend failures.
func describe(err error) string {
	if backend.Classify(err) == backend.KindUnknown {
		return err.Error()
	}
	msg := backend.UserMessage(err)
	for field, messages := range backend.FieldErrors(err) {
		if len(messages) > 0 {
			msg += fmt.Sprintf("\n  %s: %s", field, messages[0])
		}
	}
	return msg
}

// config loads the CLI configuration once per run.
func (o *globalOptions) config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := config.LoadForCLI(func(c *config.Config) {
		if o.backendURL != "" {
			c.Backend.BaseURL = o.backendURL
		}
	})
	if err != nil {
		return nil, err
	}
	o.cfg = cfg
	return cfg, nil
}

// client builds a backend client from the CLI configuration.
func (o *globalOptions) client() (*backend.Client, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	return backend.NewClient(&cfg.Backend)
}

// services returns the backend services authenticated by the global token
// flags. With a refresh token the access token is renewed on 401.
func (o *globalOptions) services() (*backend.Services, error) {
	if o.accessToken == "" {
		return nil, fmt.Errorf("no access token: run \"vbtctl login\" and pass --token or set %s", EnvAccessToken)
	}
	c, err := o.client()
	if err != nil {
		return nil, err
	}

	var tokens backend.TokenSource
	if o.refreshToken != "" {
		pair := models.TokenPair{AccessToken: o.accessToken, RefreshToken: o.refreshToken}
		tokens = backend.NewMemoryTokenSource(pair, c.RefreshTokens, backend.TokenHooks{
			OnRefresh: func(context.Context, models.TokenPair) error {
				logging.Debug().Msg("Access token refreshed; export the new one to avoid refreshing again")
				return nil
			},
		})
	} else {
		tokens = backend.StaticTokenSource(o.accessToken)
	}
	return c.Services(tokens), nil
}
