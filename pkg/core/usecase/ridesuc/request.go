// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ridesuc

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/log"
	"github.com/momeni/ryde/pkg/core/model"
)

// Quote describes the distance and fare of a trip before it is
// requested.
type Quote struct {
	Pickup, DropOff string // canonical names, if known
	PickupKnown     bool   // whether Pickup coordinates are known
	Coordinate      model.Coordinate
	DistanceKm      float64
	Fare            model.Money
}

// Candidate is a driver who may serve a pickup location.
type Candidate struct {
	Driver     *model.User
	DistanceKm float64 // from the driver to the pickup location
	Rating     float64 // average received stars
}

// Quote computes the distance and fare of a trip from the pickup to
// the dropOff location.
func (rides *UseCase) Quote(pickup, dropOff string) (Quote, error) {
	pickup, dropOff = strings.TrimSpace(pickup), strings.TrimSpace(dropOff)
	switch {
	case pickup == "" || dropOff == "":
		return Quote{}, cerr.Validation(errors.New(
			"pickup and drop-off locations are required",
		))
	case strings.EqualFold(pickup, dropOff):
		return Quote{}, cerr.Validation(errors.New(
			"pickup and drop-off locations must differ",
		))
	}
	q := Quote{Pickup: pickup, DropOff: dropOff}
	if l, ok := rides.geo.Locate(pickup); ok {
		q.Pickup, q.Coordinate, q.PickupKnown = l.Name, l.Coordinate, true
	}
	if l, ok := rides.geo.Locate(dropOff); ok {
		q.DropOff = l.Name
	}
	q.DistanceKm = rides.geo.Trip(q.Pickup, q.DropOff)
	q.Fare = rides.fares.Fare(q.DistanceKm)
	return q, nil
}

// Candidates returns the drivers who may serve the pickup location,
// best candidate first.
func (rides *UseCase) Candidates(
	ctx context.Context, pickup string,
) ([]Candidate, error) {
	us, rs, err := rides.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	l, known := rides.geo.Locate(pickup)
	return rides.match(us, rs, l.Coordinate, known), nil
}

// match filters the available and active drivers who are not busy
// with another ride and are within the matching radius of the pickup
// location. Candidates are ordered by their ascending distance and
// then by their descending rating (ties broken by ID). When pickup
// coordinates are unknown, all drivers are within the radius and
// only their ratings order them.
func (rides *UseCase) match(
	us []*model.User, rs []*model.Ride,
	pickup model.Coordinate, known bool,
) []Candidate {
	busy := make(map[int]bool)
	for _, r := range rs {
		if r.IsActive() && r.DriverID != nil {
			busy[*r.DriverID] = true
		}
	}
	var cs []Candidate
	for _, u := range us {
		if !u.IsDriver() || !u.IsActive || !u.Driver.IsAvailable {
			continue
		}
		if busy[u.ID] {
			continue
		}
		c := Candidate{Driver: u, Rating: u.AverageRating()}
		if known {
			c.DistanceKm = rides.geo.Between(u.Driver.CurrentLocation, pickup)
			if c.DistanceKm > rides.radiusKm {
				continue
			}
		}
		cs = append(cs, c)
	}
	slices.SortStableFunc(cs, func(a, b Candidate) int {
		return cmp.Or(
			cmp.Compare(a.DistanceKm, b.DistanceKm),
			cmp.Compare(b.Rating, a.Rating),
			cmp.Compare(a.Driver.ID, b.Driver.ID),
		)
	})
	return cs
}

// Request creates a new ride for the passengerID passenger from the
// pickup to the dropOff location. The passenger must not have another
// active ride and the wallet balance must cover the fare, which is
// computed once here and never recalculated. The best candidate driver
// is recorded in the ride, but the ride stays open for any eligible
// driver to accept it.
func (rides *UseCase) Request(
	ctx context.Context, passengerID int, pickup, dropOff string,
) (ride *model.Ride, err error) {
	q, err := rides.Quote(pickup, dropOff)
	if err != nil {
		return nil, err
	}
	err = rides.inTx(ctx, func(ctx context.Context, tq txQueryers) error {
		p, err := tq.users.ByID(ctx, passengerID)
		if err != nil {
			return err
		}
		if err = requirePassenger(p); err != nil {
			return err
		}
		rs, err := tq.rides.List(ctx)
		if err != nil {
			return err
		}
		for _, r := range rs {
			if r.IsActive() && r.PassengerID == passengerID {
				return cerr.Conflict(fmt.Errorf(
					"passenger #%d already has the active ride #%d",
					passengerID, r.ID,
				))
			}
		}
		if bal := p.Passenger.WalletBalance; bal < q.Fare {
			return cerr.InsufficientFunds(fmt.Errorf(
				"fare is %s but wallet balance is %s", q.Fare, bal,
			))
		}
		us, err := tq.users.List(ctx)
		if err != nil {
			return err
		}
		cs := rides.match(us, rs, q.Coordinate, q.PickupKnown)
		if len(cs) == 0 {
			rides.observer.NoDriverAvailable()
			return cerr.NoDriverAvailable(fmt.Errorf(
				"no driver is available within %g km of %s",
				rides.radiusKm, q.Pickup,
			))
		}
		candidate := cs[0].Driver.ID
		ride, err = tq.rides.Add(ctx, &model.Ride{
			PassengerID:       passengerID,
			CandidateDriverID: &candidate,
			PickupLocation:    q.Pickup,
			DropOffLocation:   q.DropOff,
			Pickup:            q.Coordinate,
			DistanceKm:        q.DistanceKm,
			Fare:              q.Fare,
			Status:            model.RideStatusRequested,
			RequestedAt:       rides.now(),
		})
		return err
	})
	if err != nil {
		log.Warn(
			ctx, "ride request is rejected",
			log.UserID(passengerID), log.Err("err", err),
		)
		return nil, err
	}
	rides.observer.RideTransitioned(model.RideStatusInvalid, ride.Status)
	log.Info(
		ctx, "ride is requested",
		log.RideID(ride.ID), log.UserID(passengerID),
		slog.String("route", ride.Route()),
		slog.String("fare", ride.Fare.String()),
	)
	return ride, nil
}

func requirePassenger(u *model.User) error {
	if !u.IsPassenger() {
		return cerr.Validation(fmt.Errorf("user #%d is not a passenger", u.ID))
	}
	if !u.IsActive {
		return cerr.Conflict(fmt.Errorf("passenger #%d is inactive", u.ID))
	}
	return nil
}

func requireDriver(u *model.User) error {
	if !u.IsDriver() {
		return cerr.Validation(fmt.Errorf("user #%d is not a driver", u.ID))
	}
	if !u.IsActive {
		return cerr.Conflict(fmt.Errorf("driver #%d is inactive", u.ID))
	}
	return nil
}
