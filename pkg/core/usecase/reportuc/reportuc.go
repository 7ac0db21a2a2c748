// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package reportuc contains the reports UseCase which loads consistent
// snapshots of the users and rides collections and passes them to the
// pure aggregation functions of the report package.
package reportuc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/report"
	"github.com/momeni/ryde/pkg/core/repo"
)

// UseCase represents a reports use case.
type UseCase struct {
	pool    repo.Pool
	usersrp repo.Users
	ridesrp repo.Rides

	topN int
	now  func() time.Time
}

// Option is a functional option for the reports use case.
type Option func(uc *UseCase) error

// WithTopN option configures the length of the top-N lists.
func WithTopN(n int) Option {
	return func(uc *UseCase) error {
		if n < 1 {
			return fmt.Errorf("top-n (%d) is not positive", n)
		}
		uc.topN = n
		return nil
	}
}

// WithClock option replaces time.Now for the revenue periods.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock must be non-nil")
		}
		uc.now = now
		return nil
	}
}

// New instantiates a reports use case.
func New(p repo.Pool, u repo.Users, r repo.Rides, opts ...Option) (*UseCase, error) {
	uc := &UseCase{pool: p, usersrp: u, ridesrp: r}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.topN == 0 {
		uc.topN = report.DefaultTopN
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}

// snapshot loads both collections as of the same commit.
func (reports *UseCase) snapshot(
	ctx context.Context,
) (us []*model.User, rs []*model.Ride, err error) {
	err = reports.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.View(ctx, func(ctx context.Context, c repo.Conn) error {
			if us, err = reports.usersrp.Conn(c).List(ctx); err != nil {
				return err
			}
			rs, err = reports.ridesrp.Conn(c).List(ctx)
			return err
		})
	})
	return
}

// System returns the admin report of the whole system.
func (reports *UseCase) System(ctx context.Context) (*report.System, error) {
	us, rs, err := reports.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.NewSystem(us, rs, reports.now(), reports.topN), nil
}

func find(us []*model.User, uid int) (*model.User, error) {
	for _, u := range us {
		if u.ID == uid {
			return u, nil
		}
	}
	return nil, cerr.NotFound(fmt.Errorf("no user #%d", uid))
}

// Driver returns the report of the uid driver.
func (reports *UseCase) Driver(ctx context.Context, uid int) (*report.Driver, error) {
	us, rs, err := reports.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	u, err := find(us, uid)
	if err != nil {
		return nil, err
	}
	if !u.IsDriver() {
		return nil, cerr.Validation(fmt.Errorf("user #%d is not a driver", uid))
	}
	return report.NewDriver(u, rs), nil
}

// Passenger returns the report of the uid passenger.
func (reports *UseCase) Passenger(ctx context.Context, uid int) (*report.Passenger, error) {
	us, rs, err := reports.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	u, err := find(us, uid)
	if err != nil {
		return nil, err
	}
	if !u.IsPassenger() {
		return nil, cerr.Validation(fmt.Errorf("user #%d is not a passenger", uid))
	}
	return report.NewPassenger(u, rs), nil
}
