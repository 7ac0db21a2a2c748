// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ratingsuc_test

import (
	"context"
	"testing"
	"time"

	"github.com/momeni/ryde/pkg/adapter/db/jsonfile"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/ratingsrp"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/ridesrp"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/usersrp"
	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
	"github.com/momeni/ryde/pkg/core/usecase/ratingsuc"
	"github.com/stretchr/testify/suite"
)

type RatingsUseCaseTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pool *jsonfile.Pool
	UC   *ratingsuc.UseCase

	passenger, driver, rideID int
}

func TestRatingsUseCaseTestSuite(t *testing.T) {
	suite.Run(t, &RatingsUseCaseTestSuite{Ctx: context.Background()})
}

func (s *RatingsUseCaseTestSuite) SetupTest() {
	p, err := jsonfile.NewPool(s.T().TempDir())
	s.Require().NoError(err)
	s.Pool = p
	s.UC, err = ratingsuc.New(
		p, usersrp.New(), ridesrp.New(), ratingsrp.New(),
	)
	s.Require().NoError(err)

	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	err = p.Conn(s.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			us := usersrp.New().Tx(tx)
			pu, err := us.Add(ctx, model.NewPassenger("pat", "secret", "p@x.io", "0115550000"))
			if err != nil {
				return err
			}
			du, err := us.Add(ctx, model.NewDriver(
				"dan", "secret", "d@x.io", "0115550001", "GP-9", "Mazda 3",
				model.Location{Name: "Downtown"},
			))
			if err != nil {
				return err
			}
			r, err := ridesrp.New().Tx(tx).Add(ctx, &model.Ride{
				PassengerID: pu.ID,
				DriverID:    &du.ID,
				Status:      model.RideStatusCompleted,
				Fare:        model.NewMoney(20),
				RequestedAt: now,
				AcceptedAt:  &now,
				CompletedAt: &now,
			})
			if err != nil {
				return err
			}
			s.passenger, s.driver, s.rideID = pu.ID, du.ID, r.ID
			return nil
		})
	})
	s.Require().NoError(err)
}

func (s *RatingsUseCaseTestSuite) TestStarsOutOfRange() {
	for _, stars := range []int{0, 6, -1} {
		_, err := s.UC.Rate(s.Ctx, ratingsuc.Input{
			FromUserID: s.passenger, ToUserID: s.driver, Stars: stars,
		})
		s.True(cerr.Is(err, cerr.KindValidation), "stars %d: %v", stars, err)
	}
	_, err := s.UC.Rate(s.Ctx, ratingsuc.Input{
		FromUserID: s.driver, ToUserID: s.driver, Stars: 5,
	})
	s.True(cerr.Is(err, cerr.KindValidation), "self rating: %v", err)

	rs, avg, err := s.UC.Received(s.Ctx, s.driver)
	s.Require().NoError(err)
	s.Empty(rs)
	s.Zero(avg)
}

func (s *RatingsUseCaseTestSuite) TestRateRide() {
	rid := s.rideID
	rt, err := s.UC.Rate(s.Ctx, ratingsuc.Input{
		FromUserID: s.passenger, ToUserID: s.driver,
		RideID: &rid, Stars: 4, Comment: "smooth",
	})
	s.Require().NoError(err)
	s.Equal(1, rt.ID)

	_, err = s.UC.Rate(s.Ctx, ratingsuc.Input{
		FromUserID: s.passenger, ToUserID: s.driver, RideID: &rid, Stars: 1,
	})
	s.True(cerr.Is(err, cerr.KindConflict), "rating twice: %v", err)

	_, err = s.UC.Rate(s.Ctx, ratingsuc.Input{
		FromUserID: s.driver, ToUserID: s.passenger, RideID: &rid, Stars: 5,
	})
	s.Require().NoError(err)

	rs, avg, err := s.UC.Received(s.Ctx, s.driver)
	s.Require().NoError(err)
	s.Require().Len(rs, 1)
	s.Equal("smooth", rs[0].Comment)
	s.Equal(4.0, avg)

	missing := rid + 1
	_, err = s.UC.Rate(s.Ctx, ratingsuc.Input{
		FromUserID: s.passenger, ToUserID: s.driver, RideID: &missing, Stars: 3,
	})
	s.True(cerr.Is(err, cerr.KindNotFound), "unknown ride: %v", err)
}

func (s *RatingsUseCaseTestSuite) TestFlagLowRated() {
	for i := 0; i < 4; i++ {
		_, err := s.UC.Rate(s.Ctx, ratingsuc.Input{
			FromUserID: s.passenger, ToUserID: s.driver, Stars: 2,
		})
		s.Require().NoError(err)
	}
	fs, err := s.UC.FlagLowRated(s.Ctx)
	s.Require().NoError(err)
	s.Empty(fs, "four ratings are not enough for flagging")

	_, err = s.UC.Rate(s.Ctx, ratingsuc.Input{
		FromUserID: s.passenger, ToUserID: s.driver, Stars: 3,
	})
	s.Require().NoError(err)
	fs, err = s.UC.FlagLowRated(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(fs, 1)
	s.Equal(s.driver, fs[0].Driver.ID)
	s.InDelta(2.2, fs[0].Average, 1e-9)
	s.Equal(5, fs[0].Count)
}
