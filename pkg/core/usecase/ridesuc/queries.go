// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ridesuc

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
)

// OpenRequest is a Requested ride as seen by a driver.
type OpenRequest struct {
	Ride       *model.Ride
	DistanceKm float64 // from the driver to the pickup, if known
	Known      bool    // whether DistanceKm could be computed
	Suggested  bool    // whether the driver was the matched candidate
}

// Ride returns the rideID ride.
func (rides *UseCase) Ride(ctx context.Context, rideID int) (ride *model.Ride, err error) {
	err = rides.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		ride, err = rides.ridesrp.Conn(c).ByID(ctx, rideID)
		return err
	})
	if err != nil {
		ride = nil
	}
	return
}

// List returns all rides.
func (rides *UseCase) List(ctx context.Context) (rs []*model.Ride, err error) {
	err = rides.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		rs, err = rides.ridesrp.Conn(c).List(ctx)
		return err
	})
	return
}

// ActiveRide returns the active ride of the userID passenger or
// driver, or a not found error if there is no such ride.
func (rides *UseCase) ActiveRide(ctx context.Context, userID int) (*model.Ride, error) {
	rs, err := rides.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		if r.IsActive() && r.Involves(userID) {
			return r, nil
		}
	}
	return nil, cerr.NotFound(fmt.Errorf("user #%d has no active ride", userID))
}

// History returns the rides of the userID passenger or driver, most
// recently requested first.
func (rides *UseCase) History(ctx context.Context, userID int) ([]*model.Ride, error) {
	rs, err := rides.List(ctx)
	if err != nil {
		return nil, err
	}
	var hs []*model.Ride
	for _, r := range rs {
		if r.Involves(userID) {
			hs = append(hs, r)
		}
	}
	slices.SortStableFunc(hs, func(a, b *model.Ride) int {
		return cmp.Or(
			b.RequestedAt.Compare(a.RequestedAt),
			cmp.Compare(b.ID, a.ID),
		)
	})
	return hs, nil
}

// OpenRequests returns the Requested rides which the driverID driver
// may accept. Rides which the driver was matched to come first, then
// the nearest pickups. Rides with unknown pickup coordinates come last.
func (rides *UseCase) OpenRequests(
	ctx context.Context, driverID int,
) ([]OpenRequest, error) {
	us, rs, err := rides.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var d *model.User
	for _, u := range us {
		if u.ID == driverID {
			d = u
			break
		}
	}
	if d == nil {
		return nil, cerr.NotFound(fmt.Errorf("no user #%d", driverID))
	}
	if err = requireDriver(d); err != nil {
		return nil, err
	}
	var ors []OpenRequest
	for _, r := range rs {
		if r.Status != model.RideStatusRequested || r.DriverID != nil {
			continue
		}
		req := OpenRequest{
			Ride: r,
			Suggested: r.CandidateDriverID != nil &&
				*r.CandidateDriverID == driverID,
		}
		if _, ok := rides.geo.Locate(r.PickupLocation); ok {
			req.DistanceKm = rides.geo.Between(
				d.Driver.CurrentLocation, r.Pickup,
			)
			req.Known = true
		}
		ors = append(ors, req)
	}
	slices.SortStableFunc(ors, func(a, b OpenRequest) int {
		return cmp.Or(
			-cmpBool(a.Suggested, b.Suggested),
			-cmpBool(a.Known, b.Known),
			cmp.Compare(a.DistanceKm, b.DistanceKm),
			cmp.Compare(a.Ride.ID, b.Ride.ID),
		)
	})
	return ors, nil
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}
