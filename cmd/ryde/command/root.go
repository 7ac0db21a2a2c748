// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands of the ryde
// ride-hailing simulation. Commands are organized using the cobra
// library. The root command runs the interactive console menus, while
// the sub-commands serve the admin REST API, seed the data directory
// with sample records, print the system report, or hash a password
// for the admin section of the configuration file.
//
//	./ryde [-c /path/of/config.yaml]          # interactive console
//	./ryde serve [-c /path/of/config.yaml]    # admin REST API
//	./ryde seed [-c /path/of/config.yaml]
//	./ryde report [-c /path/of/config.yaml]
//	./ryde hash-password [--iters 15000] [password]
package command

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/momeni/ryde/pkg/adapter/console"
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "ryde",
	Short: "A console ride-hailing simulation",
	Long: `A console ride-hailing simulation where users register as
passengers or drivers, passengers request rides between named locations,
drivers accept and drive them through a fixed progression of states, and
the fares are paid from the passenger wallets at completion.
An administrator may review the system, driver, and passenger reports
and the low-rated drivers, both from the console and the REST API.
All records are kept as JSON snapshot files in the data directory which
is named by the configuration file (or the RYDE_DATA_DIR variable).`,
	RunE: runConsole,
	Args: cobra.NoArgs,
}

func runConsole(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	c, err := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), console.UseCases{
		Users:   a.users,
		Rides:   a.rides,
		Ratings: a.ratings,
		Reports: a.reports,
	})
	if err != nil {
		return fmt.Errorf("creating console: %w", err)
	}
	return c.Run(ctx)
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. Errors are printed
// and reported with a non-zero exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadEnv, fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
	rootCmd.SilenceUsage = true
}

// loadEnv loads the .env file of the working directory, if any, so
// the CONFIG_FILE and RYDE_DATA_DIR variables may be kept there.
// Variables which are already set are not overridden.
func loadEnv() {
	_ = godotenv.Load()
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		cfgPath = "configs/sample-config.yaml"
	}
}
