// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package console

import (
	"context"

	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/usecase/ratingsuc"
)

func (c *Console) passengerMenu(ctx context.Context, s *session) error {
	for {
		choice, err := c.choose(
			"Passenger Menu - "+s.name,
			"Request a Ride",
			"View Active Ride",
			"View Wallet Balance",
			"Add Funds",
			"View Ride History",
			"Cancel a Ride",
			"Rate a Driver",
			"View My Ratings",
			"Logout",
		)
		if err != nil {
			return err
		}
		switch choice {
		case 1:
			err = c.requestRide(ctx, s)
		case 2:
			err = c.activeRide(ctx, s)
		case 3:
			err = c.walletBalance(ctx, s)
		case 4:
			err = c.addFunds(ctx, s)
		case 5:
			err = c.passengerHistory(ctx, s)
		case 6:
			err = c.cancelRide(ctx, s)
		case 7:
			err = c.rateCounterpart(ctx, s, "driver")
		case 8:
			err = c.receivedRatings(ctx, s)
		case 9:
			c.info("Goodbye, %s.", s.name)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) requestRide(ctx context.Context, s *session) error {
	c.header("Request a Ride")
	c.info("Known locations include %s.", c.suggestions(""))
	pickup, err := c.ask("Pickup location")
	if err != nil {
		return err
	}
	dropOff, err := c.ask("Drop-off location")
	if err != nil {
		return err
	}
	q, err := c.uc.Rides.Quote(pickup, dropOff)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	if !q.PickupKnown {
		c.warn("Pickup %q is not a known location.", q.Pickup)
		if hint := c.suggestions(q.Pickup); hint != "" {
			c.info("Did you mean %s?", hint)
		}
	}
	c.info(
		"Estimated fare: %s for %.1f km (%s to %s).",
		q.Fare, q.DistanceKm, q.Pickup, q.DropOff,
	)
	ok, err := c.confirm("Request this ride")
	if err != nil || !ok {
		return err
	}
	r, err := c.uc.Rides.Request(ctx, s.userID, pickup, dropOff)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.success("Ride #%d is requested. Waiting for a driver to accept it.", r.ID)
	if r.CandidateDriverID != nil {
		d, err := c.uc.Users.Profile(ctx, *r.CandidateDriverID)
		if err == nil && d.Driver != nil {
			c.info(
				"Nearest driver: %s (%s, rated %.1f).",
				d.Username, d.Driver.VehicleInfo, d.AverageRating(),
			)
		}
	}
	return nil
}

func (c *Console) activeRide(ctx context.Context, s *session) error {
	r, err := c.uc.Rides.ActiveRide(ctx, s.userID)
	switch {
	case cerr.Is(err, cerr.KindNotFound):
		c.info("You have no active ride.")
		return nil
	case err != nil:
		c.report(ctx, err)
		return nil
	}
	c.printRides([]*model.Ride{r})
	return nil
}

func (c *Console) walletBalance(ctx context.Context, s *session) error {
	b, err := c.uc.Users.Balance(ctx, s.userID)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.info("Wallet balance: %s", b)
	return nil
}

func (c *Console) addFunds(ctx context.Context, s *session) error {
	amount, err := c.askMoney("Amount to add")
	if err != nil {
		return err
	}
	b, err := c.uc.Users.AddFunds(ctx, s.userID, amount)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.success("Added %s to your wallet. New balance: %s", amount, b)
	return nil
}

func (c *Console) passengerHistory(ctx context.Context, s *session) error {
	rs, err := c.uc.Rides.History(ctx, s.userID)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	if len(rs) == 0 {
		c.info("You have no rides yet.")
		return nil
	}
	c.printRides(rs)
	rep, err := c.uc.Reports.Passenger(ctx, s.userID)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.info(
		"Completed rides: %d, total spent: %s, average fare: %s",
		rep.Rides, rep.TotalSpent, rep.AvgPerRide,
	)
	return nil
}

func (c *Console) cancelRide(ctx context.Context, s *session) error {
	r, err := c.uc.Rides.ActiveRide(ctx, s.userID)
	switch {
	case cerr.Is(err, cerr.KindNotFound):
		c.info("You have no active ride to cancel.")
		return nil
	case err != nil:
		c.report(ctx, err)
		return nil
	}
	c.printRides([]*model.Ride{r})
	ok, err := c.confirm("Cancel this ride")
	if err != nil || !ok {
		return err
	}
	if _, err = c.uc.Rides.Cancel(ctx, s.userID, r.ID); err != nil {
		c.report(ctx, err)
		return nil
	}
	c.success("Ride #%d is cancelled.", r.ID)
	return nil
}

// rateCounterpart rates the other party of a completed ride, i.e., the
// driver for passengers and the passenger for drivers.
func (c *Console) rateCounterpart(
	ctx context.Context, s *session, role string,
) error {
	rs, err := c.uc.Rides.History(ctx, s.userID)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	var completed []*model.Ride
	for _, r := range rs {
		if r.Status == model.RideStatusCompleted && r.DriverID != nil {
			completed = append(completed, r)
		}
	}
	if len(completed) == 0 {
		c.info("You have no completed rides to rate.")
		return nil
	}
	c.printRides(completed)
	id, err := c.askID("Ride id")
	if err != nil || id == 0 {
		return err
	}
	var ride *model.Ride
	for _, r := range completed {
		if r.ID == id {
			ride = r
		}
	}
	if ride == nil {
		c.failure("Ride #%d is not one of your completed rides.", id)
		return nil
	}
	to := ride.PassengerID
	if role == "driver" {
		to = *ride.DriverID
	}
	stars, err := c.askInt("Stars (1-5)", model.MinStars, model.MaxStars)
	if err != nil {
		return err
	}
	comment, err := c.ask("Comment (optional)")
	if err != nil {
		return err
	}
	_, err = c.uc.Ratings.Rate(ctx, ratingsuc.Input{
		FromUserID: s.userID,
		ToUserID:   to,
		RideID:     &ride.ID,
		Stars:      stars,
		Comment:    comment,
	})
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.success("Rated the %s of ride #%d with %d stars.", role, ride.ID, stars)
	return nil
}

func (c *Console) receivedRatings(ctx context.Context, s *session) error {
	rs, avg, err := c.uc.Ratings.Received(ctx, s.userID)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	if len(rs) == 0 {
		c.info("You have not received any ratings yet.")
		return nil
	}
	c.printRatings(rs)
	c.info("Average rating: %.2f of %d ratings", avg, len(rs))
	return nil
}
