// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package console

import (
	"context"

	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/model"
)

func (c *Console) driverMenu(ctx context.Context, s *session) error {
	for {
		choice, err := c.choose(
			"Driver Menu - "+s.name,
			"View Available Requests",
			"Accept a Ride",
			"Update Ride Progress",
			"Complete a Ride",
			"Cancel a Ride",
			"View Earnings",
			"Set Availability",
			"Update Location",
			"Rate a Passenger",
			"View My Ratings",
			"Logout",
		)
		if err != nil {
			return err
		}
		switch choice {
		case 1:
			err = c.openRequests(ctx, s)
		case 2:
			err = c.acceptRide(ctx, s)
		case 3:
			err = c.progressRide(ctx, s)
		case 4:
			err = c.completeRide(ctx, s)
		case 5:
			err = c.cancelRide(ctx, s)
		case 6:
			err = c.earnings(ctx, s)
		case 7:
			err = c.setAvailability(ctx, s)
		case 8:
			err = c.updateLocation(ctx, s)
		case 9:
			err = c.rateCounterpart(ctx, s, "passenger")
		case 10:
			err = c.receivedRatings(ctx, s)
		case 11:
			c.info("Goodbye, %s.", s.name)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) openRequests(ctx context.Context, s *session) error {
	reqs, err := c.uc.Rides.OpenRequests(ctx, s.userID)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	if len(reqs) == 0 {
		c.info("There are no open ride requests.")
		return nil
	}
	c.printOpenRequests(reqs)
	return nil
}

func (c *Console) acceptRide(ctx context.Context, s *session) error {
	if err := c.openRequests(ctx, s); err != nil {
		return err
	}
	id, err := c.askID("Ride id to accept")
	if err != nil || id == 0 {
		return err
	}
	r, err := c.uc.Rides.Accept(ctx, s.userID, id)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.success(
		"Accepted ride #%d from %s to %s. Head to the pickup location.",
		r.ID, r.PickupLocation, r.DropOffLocation,
	)
	return nil
}

// driverRide returns the active ride of the driver or nil if there
// is none (which is reported to the user).
func (c *Console) driverRide(ctx context.Context, s *session) *model.Ride {
	r, err := c.uc.Rides.ActiveRide(ctx, s.userID)
	switch {
	case cerr.Is(err, cerr.KindNotFound):
		c.info("You have no active ride.")
		return nil
	case err != nil:
		c.report(ctx, err)
		return nil
	}
	return r
}

func (c *Console) progressRide(ctx context.Context, s *session) error {
	r := c.driverRide(ctx, s)
	if r == nil {
		return nil
	}
	r, err := c.uc.Rides.Progress(ctx, s.userID, r.ID)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.success("Ride #%d is now %s.", r.ID, r.Status)
	return nil
}

func (c *Console) completeRide(ctx context.Context, s *session) error {
	r := c.driverRide(ctx, s)
	if r == nil {
		return nil
	}
	r, err := c.uc.Rides.Complete(ctx, s.userID, r.ID)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.success("Completed ride #%d and earned %s.", r.ID, r.Fare)
	return nil
}

func (c *Console) earnings(ctx context.Context, s *session) error {
	rep, err := c.uc.Reports.Driver(ctx, s.userID)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.info(
		"Total earnings: %s from %d rides (%s per ride), rated %.1f",
		rep.Earnings, rep.CompletedRides, rep.AvgPerRide, rep.Rating,
	)
	if len(rep.Recent) > 0 {
		c.printRides(rep.Recent)
	}
	return nil
}

func (c *Console) setAvailability(ctx context.Context, s *session) error {
	available, err := c.confirm("Are you available for new rides")
	if err != nil {
		return err
	}
	u, err := c.uc.Users.SetAvailability(ctx, s.userID, available)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	if u.Driver.IsAvailable {
		c.success("You are available for new rides.")
	} else {
		c.success("You are not available for new rides.")
	}
	return nil
}

func (c *Console) updateLocation(ctx context.Context, s *session) error {
	c.info("Known locations include %s.", c.suggestions(""))
	name, err := c.ask("Current location")
	if err != nil {
		return err
	}
	u, err := c.uc.Users.UpdateLocation(ctx, s.userID, name)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.success("Your location is set to %s.", u.Driver.LocationName)
	return nil
}
