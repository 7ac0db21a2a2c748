// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ridesuc contains the rides UseCase which owns the lifecycle of
// rides. Supported use cases are:
//  1. Quoting and requesting a ride as a passenger,
//  2. Finding the candidate drivers of a pickup location,
//  3. Accepting a ride as a driver and progressing it to completion,
//  4. Cancelling a ride as its passenger or driver.
//
// Every mutating use case runs in one repository transaction which
// re-reads the ride and checks its guards before writing it back, so
// concurrent attempts for the same ride have at most one winner.
package ridesuc

import (
	"context"
	"fmt"
	"time"

	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
)

// DefaultMatchRadiusKm is the maximum distance between a candidate
// driver and the pickup location.
const DefaultMatchRadiusKm = 10.0

// DistanceCalculator resolves location names and computes distances
// in kilometers.
type DistanceCalculator interface {
	// Locate returns the named location, if it is known.
	Locate(name string) (model.Location, bool)

	// Between returns the great-circle distance between a and b.
	Between(a, b model.Coordinate) float64

	// Trip returns the distance of a trip between two named
	// locations. Unknown names must still yield a deterministic
	// positive distance.
	Trip(from, to string) float64
}

// Observer is notified about the ride transitions, e.g., for metrics.
// A newly requested ride moves from RideStatusInvalid.
type Observer interface {
	RideTransitioned(from, to model.RideStatus)
	NoDriverAvailable()
}

type nopObserver struct{}

func (nopObserver) RideTransitioned(from, to model.RideStatus) {}
func (nopObserver) NoDriverAvailable()                         {}

// UseCase represents a rides use case. It holds a repository pool, the
// users and rides repositories, a distance calculator, and the rides
// specific settings.
type UseCase struct {
	pool    repo.Pool
	usersrp repo.Users
	ridesrp repo.Rides
	geo     DistanceCalculator

	fares    *model.FareSchedule
	radiusKm float64
	now      func() time.Time
	observer Observer
}

// New instantiates a rides use case.
// Required parameters are passed individually, while the optional ones
// are passed as functional options.
func New(
	p repo.Pool, u repo.Users, r repo.Rides, geo DistanceCalculator,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, usersrp: u, ridesrp: r, geo: geo}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	// now, deal with defaults
	if uc.fares == nil {
		fs := model.DefaultFareSchedule
		uc.fares = &fs
	}
	if uc.radiusKm == 0 {
		uc.radiusKm = DefaultMatchRadiusKm
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.observer == nil {
		uc.observer = nopObserver{}
	}
	return uc, nil
}

// FareSchedule returns the fare schedule which is used for quotes.
func (rides *UseCase) FareSchedule() model.FareSchedule {
	return *rides.fares
}

// MatchRadiusKm returns the maximum distance of candidate drivers.
func (rides *UseCase) MatchRadiusKm() float64 {
	return rides.radiusKm
}

type txQueryers struct {
	users repo.UsersTxQueryer
	rides repo.RidesTxQueryer
}

// inTx runs f in a new transaction. Returning an error from f discards
// all of its changes.
func (rides *UseCase) inTx(
	ctx context.Context,
	f func(ctx context.Context, q txQueryers) error,
) error {
	return rides.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return f(ctx, txQueryers{
				users: rides.usersrp.Tx(tx),
				rides: rides.ridesrp.Tx(tx),
			})
		})
	})
}

// snapshot loads users and rides as of the same commit.
func (rides *UseCase) snapshot(
	ctx context.Context,
) (us []*model.User, rs []*model.Ride, err error) {
	err = rides.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.View(ctx, func(ctx context.Context, c repo.Conn) error {
			if us, err = rides.usersrp.Conn(c).List(ctx); err != nil {
				return err
			}
			rs, err = rides.ridesrp.Conn(c).List(ctx)
			return err
		})
	})
	return
}
