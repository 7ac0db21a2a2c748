// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package usersrp_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/momeni/ryde/pkg/adapter/db/jsonfile"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/usersrp"
	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
	"github.com/stretchr/testify/suite"
)

type UsersRepoTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pool *jsonfile.Pool
	Repo *usersrp.Repo
}

func TestUsersRepoTestSuite(t *testing.T) {
	suite.Run(t, &UsersRepoTestSuite{Ctx: context.Background()})
}

func (s *UsersRepoTestSuite) SetupTest() {
	p, err := jsonfile.NewPool(s.T().TempDir())
	s.Require().NoError(err)
	s.Pool = p
	s.Repo = usersrp.New()
}

func (s *UsersRepoTestSuite) tx(f func(context.Context, repo.UsersTxQueryer) error) error {
	return s.Pool.Conn(s.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return f(ctx, s.Repo.Tx(tx))
		})
	})
}

func (s *UsersRepoTestSuite) list() (us []*model.User, err error) {
	err = s.Pool.Conn(s.Ctx, func(ctx context.Context, c repo.Conn) error {
		us, err = s.Repo.Conn(c).List(ctx)
		return err
	})
	return
}

func (s *UsersRepoTestSuite) TestVariantsRoundTrip() {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	p := model.NewPassenger("alice", "secret1", "alice@example.com", "+27 11 555 0101")
	p.CreatedAt = created
	p.Passenger.RideHistory = []int{1001}
	d := model.NewDriver(
		"bob", "secret2", "bob@example.com", "+27 11 555 0102",
		"GP-12345", "Toyota Corolla",
		model.Location{Name: "Sandton", Coordinate: model.Coordinate{Lat: -26.1076, Lon: 28.0567}},
	)
	d.CreatedAt = created
	d.Driver.TotalEarnings = model.NewMoney(43)
	d.ReceivedRatings = []model.Rating{{
		ID: 1, FromUserID: 1, ToUserID: 2, Stars: 4, CreatedAt: created,
	}}

	err := s.tx(func(ctx context.Context, q repo.UsersTxQueryer) error {
		a, err := q.Add(ctx, p)
		s.Require().NoError(err)
		s.Equal(1, a.ID)
		b, err := q.Add(ctx, d)
		s.Require().NoError(err)
		s.Equal(2, b.ID)
		return nil
	})
	s.Require().NoError(err)

	us, err := s.list()
	s.Require().NoError(err)
	s.Require().Len(us, 2)
	s.True(us[0].IsPassenger())
	s.Equal(model.NewMoney(100), us[0].Passenger.WalletBalance)
	s.Equal("Wallet", us[0].Passenger.PreferredPaymentMethod)
	s.Equal([]int{1001}, us[0].Passenger.RideHistory)
	s.Nil(us[0].Driver)
	s.True(us[1].IsDriver())
	s.True(us[1].Driver.IsAvailable)
	s.Equal("Sandton", us[1].Driver.LocationName)
	s.Equal(model.NewMoney(43), us[1].Driver.TotalEarnings)
	s.Equal(4.0, us[1].AverageRating())

	data, err := os.ReadFile(filepath.Join(s.Pool.Dir(), usersrp.File))
	s.Require().NoError(err)
	s.Contains(string(data), `"UserType": "Passenger"`)
	s.Contains(string(data), `"UserType": "Driver"`)
}

func (s *UsersRepoTestSuite) TestDuplicateUsername() {
	err := s.tx(func(ctx context.Context, q repo.UsersTxQueryer) error {
		_, err := q.Add(ctx, model.NewPassenger("carol", "secret", "c@x.io", "0115550000"))
		s.Require().NoError(err)
		_, err = q.Add(ctx, model.NewPassenger(" Carol ", "secret", "c@x.io", "0115550000"))
		return err
	})
	s.True(cerr.Is(err, cerr.KindConflict), "got %v", err)

	us, err := s.list()
	s.Require().NoError(err)
	s.Empty(us, "failed transaction must not persist its first add")
}

func (s *UsersRepoTestSuite) TestByUsernameIgnoresCase() {
	err := s.tx(func(ctx context.Context, q repo.UsersTxQueryer) error {
		_, err := q.Add(ctx, model.NewPassenger("Dave", "secret", "d@x.io", "0115550000"))
		return err
	})
	s.Require().NoError(err)
	err = s.Pool.Conn(s.Ctx, func(ctx context.Context, c repo.Conn) error {
		u, err := s.Repo.Conn(c).ByUsername(ctx, "dave")
		s.Require().NoError(err)
		s.Equal("Dave", u.Username)
		_, err = s.Repo.Conn(c).ByUsername(ctx, "eve")
		s.True(cerr.Is(err, cerr.KindNotFound))
		return nil
	})
	s.Require().NoError(err)
}

func (s *UsersRepoTestSuite) TestUnknownDiscriminator() {
	raw := `[{"UserType": "Admin", "Id": 1, "Username": "root"}]`
	err := os.WriteFile(filepath.Join(s.Pool.Dir(), usersrp.File), []byte(raw), 0o600)
	s.Require().NoError(err)

	_, err = s.list()
	s.True(cerr.Is(err, cerr.KindUnsupportedVariant), "got %v", err)
}

func (s *UsersRepoTestSuite) TestMismatchingProfileIsRejected() {
	u := model.NewPassenger("frank", "secret", "f@x.io", "0115550000")
	u.Type = model.UserTypeDriver
	err := s.tx(func(ctx context.Context, q repo.UsersTxQueryer) error {
		_, err := q.Add(ctx, u)
		return err
	})
	s.True(cerr.Is(err, cerr.KindUnsupportedVariant), "got %v", err)
}
