// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ridesuc

import (
	"context"
	"fmt"

	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/log"
	"github.com/momeni/ryde/pkg/core/model"
)

// expect re-validates the persisted status of r against the prior
// status which a transition expects. A mismatch means the transition
// already happened elsewhere.
func expect(r *model.Ride, prior model.RideStatus) error {
	if r.Status != prior {
		return cerr.StaleState(fmt.Errorf(
			"ride #%d is %s, not %s", r.ID, r.Status, prior,
		))
	}
	return nil
}

func (rides *UseCase) logTransition(
	ctx context.Context, r *model.Ride, from model.RideStatus, actor int,
) {
	rides.observer.RideTransitioned(from, r.Status)
	log.Info(
		ctx, "ride transitioned",
		log.RideID(r.ID), log.UserID(actor),
		log.Status("from", from), log.Status("to", r.Status),
	)
}

func (rides *UseCase) logRejection(
	ctx context.Context, op string, rideID, actor int, err error,
) {
	log.Warn(
		ctx, "ride "+op+" is rejected",
		log.RideID(rideID), log.UserID(actor), log.Err("err", err),
	)
}

// Accept assigns the rideID ride to the driverID driver. Only one
// driver may claim a ride, so if another driver is already assigned,
// a conflict error is returned. A ride which is not Requested anymore
// (e.g., it was cancelled) fails with a stale state error. The driver
// must be available and must not have another active ride. Accepting
// a ride makes the driver unavailable.
func (rides *UseCase) Accept(
	ctx context.Context, driverID, rideID int,
) (ride *model.Ride, err error) {
	err = rides.inTx(ctx, func(ctx context.Context, tq txQueryers) error {
		r, err := tq.rides.ByID(ctx, rideID)
		if err != nil {
			return err
		}
		if r.DriverID != nil {
			return cerr.Conflict(fmt.Errorf(
				"ride #%d is already accepted by driver #%d",
				r.ID, *r.DriverID,
			))
		}
		if err = expect(r, model.RideStatusRequested); err != nil {
			return err
		}
		d, err := tq.users.ByID(ctx, driverID)
		if err != nil {
			return err
		}
		if err = requireDriver(d); err != nil {
			return err
		}
		if d.ID == r.PassengerID {
			return cerr.Conflict(fmt.Errorf(
				"driver #%d may not accept own ride", d.ID,
			))
		}
		rs, err := tq.rides.List(ctx)
		if err != nil {
			return err
		}
		for _, o := range rs {
			if o.IsActive() && o.HasDriver(driverID) {
				return cerr.Conflict(fmt.Errorf(
					"driver #%d already has the active ride #%d",
					driverID, o.ID,
				))
			}
		}
		if !d.Driver.IsAvailable {
			return cerr.Conflict(fmt.Errorf(
				"driver #%d is not available", driverID,
			))
		}
		now := rides.now()
		r.DriverID = &driverID
		r.Status = model.RideStatusAccepted
		r.AcceptedAt = &now
		if err = tq.rides.Update(ctx, r); err != nil {
			return err
		}
		d.Driver.IsAvailable = false
		if err = tq.users.Update(ctx, d); err != nil {
			return err
		}
		ride = r
		return nil
	})
	if err != nil {
		rides.logRejection(ctx, "accept", rideID, driverID, err)
		return nil, err
	}
	rides.logTransition(ctx, ride, model.RideStatusRequested, driverID)
	return ride, nil
}

// StartEnRoute moves an accepted ride of the driverID driver to the
// EnRouteToPickup status.
func (rides *UseCase) StartEnRoute(
	ctx context.Context, driverID, rideID int,
) (*model.Ride, error) {
	return rides.advance(
		ctx, driverID, rideID,
		model.RideStatusAccepted, model.RideStatusEnRouteToPickup,
	)
}

// ArriveAtPickup moves a ride of the driverID driver from the
// EnRouteToPickup to the ArrivedAtPickup status.
func (rides *UseCase) ArriveAtPickup(
	ctx context.Context, driverID, rideID int,
) (*model.Ride, error) {
	return rides.advance(
		ctx, driverID, rideID,
		model.RideStatusEnRouteToPickup, model.RideStatusArrivedAtPickup,
	)
}

// StartTrip moves a ride of the driverID driver from ArrivedAtPickup
// to InProgress, recording the StartedAt time.
func (rides *UseCase) StartTrip(
	ctx context.Context, driverID, rideID int,
) (*model.Ride, error) {
	return rides.advance(
		ctx, driverID, rideID,
		model.RideStatusArrivedAtPickup, model.RideStatusInProgress,
	)
}

// Progress moves the rideID ride of the driverID driver one step
// forward, from Accepted up to InProgress. Completion is not handled
// by Progress because it processes the payment (see Complete).
func (rides *UseCase) Progress(
	ctx context.Context, driverID, rideID int,
) (*model.Ride, error) {
	r, err := rides.Ride(ctx, rideID)
	if err != nil {
		return nil, err
	}
	next, ok := r.Status.Next()
	if !ok || next == model.RideStatusAccepted ||
		next == model.RideStatusCompleted {
		return nil, cerr.Conflict(fmt.Errorf(
			"ride #%d may not be progressed from %s", r.ID, r.Status,
		))
	}
	return rides.advance(ctx, driverID, rideID, r.Status, next)
}

func (rides *UseCase) advance(
	ctx context.Context, driverID, rideID int,
	from, to model.RideStatus,
) (ride *model.Ride, err error) {
	err = rides.inTx(ctx, func(ctx context.Context, tq txQueryers) error {
		r, err := tq.rides.ByID(ctx, rideID)
		if err != nil {
			return err
		}
		if !r.HasDriver(driverID) {
			return cerr.Conflict(fmt.Errorf(
				"ride #%d is not held by driver #%d", r.ID, driverID,
			))
		}
		if err = expect(r, from); err != nil {
			return err
		}
		r.Status = to
		if to == model.RideStatusInProgress {
			now := rides.now()
			r.StartedAt = &now
		}
		if err = tq.rides.Update(ctx, r); err != nil {
			return err
		}
		ride = r
		return nil
	})
	if err != nil {
		rides.logRejection(ctx, "progress", rideID, driverID, err)
		return nil, err
	}
	rides.logTransition(ctx, ride, from, driverID)
	return ride, nil
}

// Complete finishes an InProgress ride of the driverID driver. The
// fare moves from the passenger wallet to the driver earnings and the
// ride is appended to both histories. The driver becomes available
// again.
func (rides *UseCase) Complete(
	ctx context.Context, driverID, rideID int,
) (ride *model.Ride, err error) {
	err = rides.inTx(ctx, func(ctx context.Context, tq txQueryers) error {
		r, err := tq.rides.ByID(ctx, rideID)
		if err != nil {
			return err
		}
		if !r.HasDriver(driverID) {
			return cerr.Conflict(fmt.Errorf(
				"ride #%d is not held by driver #%d", r.ID, driverID,
			))
		}
		if err = expect(r, model.RideStatusInProgress); err != nil {
			return err
		}
		p, err := tq.users.ByID(ctx, r.PassengerID)
		if err != nil {
			return err
		}
		d, err := tq.users.ByID(ctx, driverID)
		if err != nil {
			return err
		}
		if !p.IsPassenger() || !d.IsDriver() {
			return cerr.UnsupportedVariant(fmt.Errorf(
				"ride #%d refers to users of unexpected types", r.ID,
			))
		}
		if p.Passenger.WalletBalance < r.Fare {
			return cerr.InsufficientFunds(fmt.Errorf(
				"fare is %s but wallet balance is %s",
				r.Fare, p.Passenger.WalletBalance,
			))
		}
		p.Passenger.WalletBalance -= r.Fare
		p.Passenger.RideHistory = append(p.Passenger.RideHistory, r.ID)
		d.Driver.TotalEarnings += r.Fare
		d.Driver.CompletedRides = append(d.Driver.CompletedRides, r.ID)
		d.Driver.IsAvailable = true

		now := rides.now()
		r.Status = model.RideStatusCompleted
		r.CompletedAt = &now
		if err = tq.rides.Update(ctx, r); err != nil {
			return err
		}
		if err = tq.users.Update(ctx, p); err != nil {
			return err
		}
		if err = tq.users.Update(ctx, d); err != nil {
			return err
		}
		ride = r
		return nil
	})
	if err != nil {
		rides.logRejection(ctx, "completion", rideID, driverID, err)
		return nil, err
	}
	rides.logTransition(ctx, ride, model.RideStatusInProgress, driverID)
	return ride, nil
}

// Cancel cancels an active ride on behalf of its passenger or its
// assigned driver. A ride which was not accepted yet keeps a nil
// DriverID. If a driver was assigned, the driver becomes available
// again. Since payment happens only at completion, there is nothing
// to refund.
func (rides *UseCase) Cancel(
	ctx context.Context, userID, rideID int,
) (ride *model.Ride, err error) {
	var from model.RideStatus
	err = rides.inTx(ctx, func(ctx context.Context, tq txQueryers) error {
		r, err := tq.rides.ByID(ctx, rideID)
		if err != nil {
			return err
		}
		if !r.Involves(userID) {
			return cerr.Conflict(fmt.Errorf(
				"user #%d may not cancel ride #%d", userID, r.ID,
			))
		}
		if !r.Status.CanTransitionTo(model.RideStatusCancelled) {
			return cerr.StaleState(fmt.Errorf(
				"ride #%d is already %s", r.ID, r.Status,
			))
		}
		from = r.Status
		now := rides.now()
		r.Status = model.RideStatusCancelled
		r.CancelledAt = &now
		r.CancelledBy = &userID
		if err = tq.rides.Update(ctx, r); err != nil {
			return err
		}
		if r.DriverID != nil {
			d, err := tq.users.ByID(ctx, *r.DriverID)
			if err != nil {
				return err
			}
			if d.IsDriver() {
				d.Driver.IsAvailable = true
				if err = tq.users.Update(ctx, d); err != nil {
					return err
				}
			}
		}
		ride = r
		return nil
	})
	if err != nil {
		rides.logRejection(ctx, "cancellation", rideID, userID, err)
		return nil, err
	}
	rides.logTransition(ctx, ride, from, userID)
	return ride, nil
}
