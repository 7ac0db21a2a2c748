// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package seeduc_test

import (
	"context"
	"testing"
	"time"

	"github.com/momeni/ryde/pkg/adapter/db/jsonfile"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/ratingsrp"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/ridesrp"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/usersrp"
	"github.com/momeni/ryde/pkg/adapter/geo"
	"github.com/momeni/ryde/pkg/adapter/hash/scram"
	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
	"github.com/momeni/ryde/pkg/core/usecase/seeduc"
	"github.com/stretchr/testify/suite"
)

type SeedUseCaseTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pool *jsonfile.Pool
	Now  time.Time
}

func TestSeedUseCaseTestSuite(t *testing.T) {
	suite.Run(t, &SeedUseCaseTestSuite{
		Ctx: context.Background(),
		Now: time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
	})
}

func (s *SeedUseCaseTestSuite) SetupTest() {
	p, err := jsonfile.NewPool(s.T().TempDir())
	s.Require().NoError(err)
	s.Pool = p
}

func (s *SeedUseCaseTestSuite) newUseCase(opts ...seeduc.Option) *seeduc.UseCase {
	calc := geo.NewCalculator(geo.NewGazetteer(), geo.DefaultFallback)
	opts = append(opts, seeduc.WithClock(func() time.Time { return s.Now }))
	uc, err := seeduc.New(
		s.Pool, usersrp.New(), ridesrp.New(), ratingsrp.New(), calc, opts...,
	)
	s.Require().NoError(err)
	return uc
}

func (s *SeedUseCaseTestSuite) TestSeedEmptyStore() {
	sum, err := s.newUseCase().Seed(s.Ctx)
	s.Require().NoError(err)
	s.Equal(seeduc.Summary{Users: 5, Rides: 2, Ratings: 2}, *sum)

	err = s.Pool.Conn(s.Ctx, func(ctx context.Context, c repo.Conn) error {
		rides := ridesrp.New().Conn(c)
		r1, err := rides.ByID(ctx, 1001)
		s.Require().NoError(err)
		s.Equal("Downtown → Sandton", r1.Route())
		s.Equal(model.NewMoney(43), r1.Fare)
		s.Equal(model.RideStatusCompleted, r1.Status)
		s.True(s.Now.Add(-2 * time.Hour).Equal(r1.RequestedAt))
		s.Require().NotNil(r1.CompletedAt)
		s.True(s.Now.Add(-90 * time.Minute).Equal(*r1.CompletedAt))

		r2, err := rides.ByID(ctx, 1002)
		s.Require().NoError(err)
		s.Equal(model.NewMoney(62), r2.Fare)

		john, err := usersrp.New().Conn(c).ByUsername(ctx, "john_driver")
		s.Require().NoError(err)
		s.Equal(model.NewMoney(43), john.Driver.TotalEarnings)
		s.Equal([]int{1001}, john.Driver.CompletedRides)
		s.Require().Len(john.ReceivedRatings, 1)
		s.Equal(5, john.ReceivedRatings[0].Stars)
		s.Equal(seeduc.DefaultPassword, john.Password)

		mike, err := usersrp.New().Conn(c).ByUsername(ctx, "mike_transport")
		s.Require().NoError(err)
		s.False(mike.Driver.IsAvailable)

		alice, err := usersrp.New().Conn(c).ByUsername(ctx, "alice_rider")
		s.Require().NoError(err)
		s.Equal(model.NewMoney(250), alice.Passenger.WalletBalance)
		return nil
	})
	s.Require().NoError(err)

	err = s.Pool.Conn(s.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			r, err := ridesrp.New().Tx(tx).Add(ctx, &model.Ride{
				PassengerID: 4,
				Status:      model.RideStatusRequested,
				RequestedAt: s.Now,
			})
			s.Require().NoError(err)
			s.Equal(1003, r.ID, "new rides continue after the samples")
			return nil
		})
	})
	s.Require().NoError(err)
}

func (s *SeedUseCaseTestSuite) TestSeedKeepsExistingData() {
	uc := s.newUseCase()
	_, err := uc.Seed(s.Ctx)
	s.Require().NoError(err)

	_, err = uc.Seed(s.Ctx)
	s.ErrorIs(err, seeduc.ErrNotEmpty)
	s.True(cerr.Is(err, cerr.KindConflict))
}

func (s *SeedUseCaseTestSuite) TestSeedHashesPasswords() {
	_, err := s.newUseCase(
		seeduc.WithPasswordHasher(scram.SHA256(), 4096),
	).Seed(s.Ctx)
	s.Require().NoError(err)

	err = s.Pool.Conn(s.Ctx, func(ctx context.Context, c repo.Conn) error {
		u, err := usersrp.New().Conn(c).ByUsername(ctx, "bob_commuter")
		s.Require().NoError(err)
		s.NotEqual(seeduc.DefaultPassword, u.Password)
		ok, err := scram.SHA256().Check(u.Password, seeduc.DefaultPassword)
		s.Require().NoError(err)
		s.True(ok)
		return nil
	})
	s.Require().NoError(err)
}

func (s *SeedUseCaseTestSuite) TestInvalidOptions() {
	calc := geo.NewCalculator(geo.NewGazetteer(), geo.DefaultFallback)
	_, err := seeduc.New(
		s.Pool, usersrp.New(), ridesrp.New(), ratingsrp.New(), calc,
		seeduc.WithPasswordHasher(scram.SHA256(), 100),
	)
	s.Error(err)
	_, err = seeduc.New(
		s.Pool, usersrp.New(), ridesrp.New(), ratingsrp.New(), nil,
	)
	s.Error(err)
}
