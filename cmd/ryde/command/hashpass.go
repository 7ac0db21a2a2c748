// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/momeni/ryde/pkg/adapter/hash/scram"
	"github.com/spf13/cobra"
)

var hashIters int

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the SCRAM-SHA-256 hash string of a password",
	Long: `Print the SCRAM-SHA-256 hash string of a password, so it can be
stored as the admin password in the configuration file instead of its
plaintext. The password is read from the standard input if it is not
passed as an argument. A random salt is generated for each run.`,
	RunE: hashPassword,
	Args: cobra.MaximumNArgs(1),
}

func hashPassword(cmd *cobra.Command, args []string) error {
	var pass string
	if len(args) == 1 {
		pass = args[0]
	} else {
		sc := bufio.NewScanner(cmd.InOrStdin())
		if sc.Scan() {
			pass = strings.TrimRight(sc.Text(), "\r")
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
	}
	if pass == "" {
		return errors.New("password must be non-empty")
	}
	h, err := scram.SHA256().Hash(pass, "", hashIters)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), h)
	return nil
}

func init() {
	hashPasswordCmd.Flags().IntVar(
		&hashIters, "iters", scram.DefaultIters, "SCRAM iterations count",
	)
	rootCmd.AddCommand(hashPasswordCmd)
}
