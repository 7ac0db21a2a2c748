// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"errors"
	"fmt"

	"github.com/momeni/ryde/pkg/core/usecase/seeduc"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty data directory with sample records",
	Long: `Fill an empty data directory with sample records, namely three
drivers, two passengers, two completed rides (#1001 and #1002), and
their ratings. All sample users have the same password, i.e., ` +
		seeduc.DefaultPassword + `.
If the data directory already has some users or rides, it is left
untouched.`,
	RunE: seed,
	Args: cobra.NoArgs,
}

func seed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	uc, err := a.cfg.NewSeedUseCase(
		a.pool, a.usersrp, a.ridesrp, a.ratingsrp, a.calc,
	)
	if err != nil {
		return fmt.Errorf("creating seed use case: %w", err)
	}
	sum, err := uc.Seed(ctx)
	switch {
	case errors.Is(err, seeduc.ErrNotEmpty):
		fmt.Fprintln(cmd.OutOrStdout(), "The data directory is not empty; nothing is seeded.")
		return nil
	case err != nil:
		return fmt.Errorf("seeding: %w", err)
	}
	fmt.Fprintf(
		cmd.OutOrStdout(), "Seeded %d users, %d rides, and %d ratings.\n",
		sum.Users, sum.Rides, sum.Ratings,
	)
	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
