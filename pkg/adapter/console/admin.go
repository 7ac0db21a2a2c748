// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package console

import (
	"context"
)

func (c *Console) adminMenu(ctx context.Context, s *session) error {
	for {
		choice, err := c.choose(
			"Admin Menu",
			"View Reports",
			"Flag Low-Rated Drivers",
			"View Driver Report",
			"View Passenger Report",
			"List Users",
			"Logout",
		)
		if err != nil {
			return err
		}
		switch choice {
		case 1:
			err = c.systemReport(ctx)
		case 2:
			err = c.flagDrivers(ctx)
		case 3:
			err = c.driverReport(ctx)
		case 4:
			err = c.passengerReport(ctx)
		case 5:
			err = c.listUsers(ctx)
		case 6:
			c.info("Goodbye, %s.", s.name)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) flagDrivers(ctx context.Context) error {
	fs, err := c.uc.Ratings.FlagLowRated(ctx)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	threshold, minRatings := c.uc.Ratings.Threshold()
	if len(fs) == 0 {
		c.info(
			"No driver is rated below %.1f with at least %d ratings.",
			threshold, minRatings,
		)
		return nil
	}
	c.printFlagged(fs)
	c.warn("%d driver(s) are flagged for review.", len(fs))
	return nil
}

func (c *Console) driverReport(ctx context.Context) error {
	id, err := c.askID("Driver id")
	if err != nil || id == 0 {
		return err
	}
	rep, err := c.uc.Reports.Driver(ctx, id)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.printDriverReport(rep)
	return nil
}

func (c *Console) passengerReport(ctx context.Context) error {
	id, err := c.askID("Passenger id")
	if err != nil || id == 0 {
		return err
	}
	rep, err := c.uc.Reports.Passenger(ctx, id)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.printPassengerReport(rep)
	return nil
}

func (c *Console) listUsers(ctx context.Context) error {
	us, err := c.uc.Users.List(ctx)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	if len(us) == 0 {
		c.info("There are no registered users.")
		return nil
	}
	c.printUsers(us)
	return nil
}
