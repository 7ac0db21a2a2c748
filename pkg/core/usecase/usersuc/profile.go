// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package usersuc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/log"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
)

// MaxTopUp is the largest amount which may be added to a wallet at
// once.
var MaxTopUp = model.NewMoney(10000)

func asPassenger(u *model.User) error {
	if !u.IsPassenger() {
		return cerr.Validation(fmt.Errorf("user #%d is not a passenger", u.ID))
	}
	return nil
}

func asDriver(u *model.User) error {
	if !u.IsDriver() {
		return cerr.Validation(fmt.Errorf("user #%d is not a driver", u.ID))
	}
	return nil
}

// Balance returns the wallet balance of the pid passenger.
func (users *UseCase) Balance(ctx context.Context, pid int) (model.Money, error) {
	u, err := users.Profile(ctx, pid)
	if err != nil {
		return 0, err
	}
	if err = asPassenger(u); err != nil {
		return 0, err
	}
	return u.Passenger.WalletBalance, nil
}

// AddFunds adds amount to the wallet of the pid passenger and returns
// the new balance.
func (users *UseCase) AddFunds(
	ctx context.Context, pid int, amount model.Money,
) (model.Money, error) {
	if amount <= 0 || amount > MaxTopUp {
		return 0, cerr.Validation(fmt.Errorf(
			"amount (%s) must be positive and at most %s", amount, MaxTopUp,
		))
	}
	u, err := users.update(ctx, pid, func(
		_ context.Context, u *model.User, _ repo.RidesTxQueryer,
	) error {
		if err := asPassenger(u); err != nil {
			return err
		}
		u.Passenger.WalletBalance += amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Info(
		ctx, "wallet is topped up",
		log.UserID(pid), log.Status("amount", amount),
	)
	return u.Passenger.WalletBalance, nil
}

// SetAvailability changes whether the did driver accepts new rides.
// A driver who holds an active ride cannot become available.
func (users *UseCase) SetAvailability(
	ctx context.Context, did int, available bool,
) (*model.User, error) {
	u, err := users.update(ctx, did, func(
		ctx context.Context, u *model.User, rides repo.RidesTxQueryer,
	) error {
		if err := asDriver(u); err != nil {
			return err
		}
		if available {
			rs, err := rides.List(ctx)
			if err != nil {
				return err
			}
			for _, r := range rs {
				if r.IsActive() && r.HasDriver(did) {
					return cerr.Conflict(fmt.Errorf(
						"driver #%d holds the active ride #%d", did, r.ID,
					))
				}
			}
		}
		u.Driver.IsAvailable = available
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "driver availability is changed",
		log.UserID(did), slog.Bool("available", available),
	)
	return u, nil
}

// UpdateLocation moves the did driver to the named location.
func (users *UseCase) UpdateLocation(
	ctx context.Context, did int, location string,
) (*model.User, error) {
	loc, err := users.locate(location)
	if err != nil {
		return nil, err
	}
	return users.update(ctx, did, func(
		_ context.Context, u *model.User, _ repo.RidesTxQueryer,
	) error {
		if err := asDriver(u); err != nil {
			return err
		}
		u.Driver.CurrentLocation = loc.Coordinate
		u.Driver.LocationName = loc.Name
		return nil
	})
}
