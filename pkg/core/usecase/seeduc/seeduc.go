// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package seeduc contains the seed UseCase which fills an empty data
// directory with sample drivers, passengers, completed rides, and
// ratings, so the menus and reports have something to show in a
// development environment.
package seeduc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/log"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
	"github.com/momeni/ryde/pkg/core/scram"
)

// DefaultPassword is the password of all sample users.
const DefaultPassword = "ryde123"

// ErrNotEmpty indicates that the store already has some users or
// rides, so it was left untouched.
var ErrNotEmpty = errors.New("store is not empty")

// Locator resolves the location names of the sample data.
type Locator interface {
	Locate(name string) (model.Location, bool)
}

// UseCase represents the seed use case.
type UseCase struct {
	pool      repo.Pool
	usersrp   repo.Users
	ridesrp   repo.Rides
	ratingsrp repo.Ratings
	locator   Locator

	fares     *model.FareSchedule
	hasher    scram.Hasher
	hashIters int
	now       func() time.Time
}

// New instantiates a seed use case.
func New(
	p repo.Pool, u repo.Users, r repo.Rides, rt repo.Ratings, l Locator,
	opts ...Option,
) (*UseCase, error) {
	if l == nil {
		return nil, errors.New("locator must be non-nil")
	}
	uc := &UseCase{
		pool: p, usersrp: u, ridesrp: r, ratingsrp: rt, locator: l,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.fares == nil {
		fs := model.DefaultFareSchedule
		uc.fares = &fs
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}

// Option is a functional option for the seed use case.
type Option func(uc *UseCase) error

// WithFareSchedule option computes the sample fares with fs.
func WithFareSchedule(fs model.FareSchedule) Option {
	return func(uc *UseCase) error {
		if fs.Base < 0 || fs.PerKm < 0 {
			return fmt.Errorf("fare schedule (%s + %s/km) is negative", fs.Base, fs.PerKm)
		}
		uc.fares = &fs
		return nil
	}
}

// WithPasswordHasher option stores the sample passwords as SCRAM hash
// strings, similar to the registered users.
func WithPasswordHasher(h scram.Hasher, iters int) Option {
	return func(uc *UseCase) error {
		if h == nil {
			return errors.New("hasher must be non-nil")
		}
		if iters < 4096 {
			return fmt.Errorf("iterations (%d) must be at least 4096", iters)
		}
		uc.hasher, uc.hashIters = h, iters
		return nil
	}
}

// WithClock option replaces the time.Now function, so tests can
// predict the sample timestamps.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		uc.now = now
		return nil
	}
}

// Summary counts the seeded records.
type Summary struct {
	Users   int
	Rides   int
	Ratings int
}

type sampleDriver struct {
	username, email, phone, license, vehicle, location string
	available                                         bool
}

type samplePassenger struct {
	username, email, phone string
	wallet                 float64
}

var (
	drivers = []sampleDriver{
		{
			"john_driver", "john@ryde.com", "+27-11-123-4567",
			"GP-001-2023", "Toyota Corolla - White (CA 123 GP)",
			"Downtown", true,
		},
		{
			"sarah_wheels", "sarah@ryde.com", "+27-11-234-5678",
			"GP-002-2023", "Honda Civic - Blue (CA 456 GP)",
			"Sandton", true,
		},
		{
			"mike_transport", "mike@ryde.com", "+27-11-345-6789",
			"GP-003-2023", "Volkswagen Polo - Silver (CA 789 GP)",
			"Rosebank", false,
		},
	}
	passengers = []samplePassenger{
		{"alice_rider", "alice@gmail.com", "+27-82-123-4567", 250},
		{"bob_commuter", "bob@yahoo.com", "+27-83-234-5678", 150},
	}
)

// sampleRide describes a completed ride between the i-th passenger and
// the i-th driver, with times relative to the seeding moment.
type sampleRide struct {
	id                int
	pickup, dropOff   string
	distanceKm        float64
	requested, accept time.Duration
	started, done     time.Duration
	stars             int
	comment           string
}

var rides = []sampleRide{
	{
		1001, "Downtown", "Sandton", 15.2,
		-2 * time.Hour, 3 * time.Minute, 12 * time.Minute, 30 * time.Minute,
		5, "Excellent driver!",
	},
	{
		1002, "Rosebank", "Airport", 22.8,
		-4 * time.Hour, 2 * time.Minute, 10 * time.Minute, 45 * time.Minute,
		4, "Nice car and friendly",
	},
}

// Seed creates the sample users, rides, and ratings in one transaction
// if the users and rides collections are both empty. Otherwise, it
// returns a conflict error wrapping ErrNotEmpty.
func (seed *UseCase) Seed(ctx context.Context) (*Summary, error) {
	sum := &Summary{}
	err := seed.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			uq, rq := seed.usersrp.Tx(tx), seed.ridesrp.Tx(tx)
			if err := checkEmpty(ctx, uq, rq); err != nil {
				return err
			}
			ds, ps, err := seed.addUsers(ctx, uq)
			if err != nil {
				return err
			}
			sum.Users = len(ds) + len(ps)
			return seed.addRides(ctx, uq, rq, seed.ratingsrp.Tx(tx), ds, ps, sum)
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "sample data is seeded",
		slog.Int("users", sum.Users), slog.Int("rides", sum.Rides),
		slog.Int("ratings", sum.Ratings),
	)
	return sum, nil
}

func checkEmpty(
	ctx context.Context, uq repo.UsersTxQueryer, rq repo.RidesTxQueryer,
) error {
	us, err := uq.List(ctx)
	if err != nil {
		return err
	}
	rs, err := rq.List(ctx)
	if err != nil {
		return err
	}
	if len(us) > 0 || len(rs) > 0 {
		return cerr.Conflict(fmt.Errorf(
			"%w: %d users and %d rides", ErrNotEmpty, len(us), len(rs),
		))
	}
	return nil
}

func (seed *UseCase) password() (string, error) {
	if seed.hasher == nil {
		return DefaultPassword, nil
	}
	h, err := seed.hasher.Hash(DefaultPassword, "", seed.hashIters)
	if err != nil {
		return "", fmt.Errorf("hashing sample password: %w", err)
	}
	return h, nil
}

func (seed *UseCase) addUsers(
	ctx context.Context, uq repo.UsersTxQueryer,
) (ds, ps []*model.User, err error) {
	pass, err := seed.password()
	if err != nil {
		return nil, nil, err
	}
	for _, sd := range drivers {
		loc, ok := seed.locator.Locate(sd.location)
		if !ok {
			return nil, nil, fmt.Errorf("unknown sample location %q", sd.location)
		}
		u := model.NewDriver(
			sd.username, pass, sd.email, sd.phone, sd.license, sd.vehicle,
			loc,
		)
		u.Driver.IsAvailable = sd.available
		if u, err = uq.Add(ctx, u); err != nil {
			return nil, nil, fmt.Errorf("adding driver %s: %w", sd.username, err)
		}
		ds = append(ds, u)
	}
	for _, sp := range passengers {
		u := model.NewPassenger(sp.username, pass, sp.email, sp.phone)
		u.Passenger.WalletBalance = model.NewMoney(sp.wallet)
		if u, err = uq.Add(ctx, u); err != nil {
			return nil, nil, fmt.Errorf("adding passenger %s: %w", sp.username, err)
		}
		ps = append(ps, u)
	}
	return ds, ps, nil
}

func (seed *UseCase) addRides(
	ctx context.Context,
	uq repo.UsersTxQueryer, rq repo.RidesTxQueryer, tq repo.RatingsTxQueryer,
	ds, ps []*model.User, sum *Summary,
) error {
	now := seed.now()
	for i, sr := range rides {
		p, d := ps[i], ds[i]
		requested := now.Add(sr.requested)
		accepted := requested.Add(sr.accept)
		started := requested.Add(sr.started)
		completed := requested.Add(sr.done)
		pickup, _ := seed.locator.Locate(sr.pickup)
		r, err := rq.Add(ctx, &model.Ride{
			ID:              sr.id,
			PassengerID:     p.ID,
			DriverID:        &d.ID,
			PickupLocation:  sr.pickup,
			DropOffLocation: sr.dropOff,
			Pickup:          pickup.Coordinate,
			DistanceKm:      sr.distanceKm,
			Fare:            seed.fares.Fare(sr.distanceKm),
			Status:          model.RideStatusCompleted,
			RequestedAt:     requested,
			AcceptedAt:      &accepted,
			StartedAt:       &started,
			CompletedAt:     &completed,
		})
		if err != nil {
			return fmt.Errorf("adding ride #%d: %w", sr.id, err)
		}
		sum.Rides++

		rt, err := tq.Add(ctx, &model.Rating{
			FromUserID: p.ID,
			ToUserID:   d.ID,
			RideID:     &r.ID,
			Stars:      sr.stars,
			Comment:    sr.comment,
			CreatedAt:  completed,
		})
		if err != nil {
			return fmt.Errorf("rating ride #%d: %w", r.ID, err)
		}
		sum.Ratings++

		p.Passenger.RideHistory = append(p.Passenger.RideHistory, r.ID)
		d.Driver.CompletedRides = append(d.Driver.CompletedRides, r.ID)
		d.Driver.TotalEarnings += r.Fare
		d.ReceivedRatings = append(d.ReceivedRatings, *rt)
		if err = uq.Update(ctx, p); err != nil {
			return err
		}
		if err = uq.Update(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
