// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/go-extras/cobraflags"
)

const (
	usernameFlag = "username"
	passwordFlag = "password"
)

func newLoginCommand(opts *globalOptions) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		usernameFlag: &cobraflags.StringFlag{
			Name:  usernameFlag,
			Value: "",
			Usage: "Backend username",
		},
		passwordFlag: &cobraflags.StringFlag{
			Name:  passwordFlag,
			Value: "",
			Usage: "Backend password",
		},
	}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the backend and print the token pair as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username := flags[usernameFlag].GetString()
			password := flags[passwordFlag].GetString()
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}

			c, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := c.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}
