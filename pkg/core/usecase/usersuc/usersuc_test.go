// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package usersuc_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/momeni/ryde/pkg/adapter/db/jsonfile"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/ridesrp"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/usersrp"
	"github.com/momeni/ryde/pkg/adapter/geo"
	"github.com/momeni/ryde/pkg/adapter/hash/scram"
	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
	"github.com/momeni/ryde/pkg/core/usecase/usersuc"
	"github.com/stretchr/testify/suite"
)

type UsersUseCaseTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pool *jsonfile.Pool
	UC   *usersuc.UseCase
}

func TestUsersUseCaseTestSuite(t *testing.T) {
	suite.Run(t, &UsersUseCaseTestSuite{Ctx: context.Background()})
}

func (s *UsersUseCaseTestSuite) newUseCase(opts ...usersuc.Option) *usersuc.UseCase {
	uc, err := usersuc.New(
		s.Pool, usersrp.New(), ridesrp.New(),
		geo.NewCalculator(geo.NewGazetteer(), nil), scram.SHA256(),
		opts...,
	)
	s.Require().NoError(err)
	return uc
}

func (s *UsersUseCaseTestSuite) SetupTest() {
	p, err := jsonfile.NewPool(s.T().TempDir())
	s.Require().NoError(err)
	s.Pool = p
	s.UC = s.newUseCase(usersuc.WithAdmin(usersuc.AdminCredentials{
		Username: "admin", Password: "admin123",
	}))
}

func account(name string) usersuc.Account {
	return usersuc.Account{
		Username: name,
		Password: "secret1",
		Email:    strings.TrimSpace(name) + "@ryde.test",
		Phone:    "+27 11 555-0101",
	}
}

func (s *UsersUseCaseTestSuite) TestRegisterPassenger() {
	u, err := s.UC.RegisterPassenger(s.Ctx, account(" alice "))
	s.Require().NoError(err)
	s.Equal("alice", u.Username)
	s.True(u.IsPassenger())
	s.Equal(model.NewMoney(100), u.Passenger.WalletBalance)
	s.Equal(model.DefaultPaymentMethod, u.Passenger.PreferredPaymentMethod)
	s.False(u.CreatedAt.IsZero())

	_, err = s.UC.RegisterPassenger(s.Ctx, account("ALICE"))
	s.True(cerr.Is(err, cerr.KindConflict), "got %v", err)
}

func (s *UsersUseCaseTestSuite) TestRegistrationValidation() {
	cases := map[string]func(a *usersuc.Account){
		"empty username": func(a *usersuc.Account) { a.Username = "  " },
		"short password": func(a *usersuc.Account) { a.Password = "12345" },
		"bad email":      func(a *usersuc.Account) { a.Email = "bob@example" },
		"spaced email":   func(a *usersuc.Account) { a.Email = "bob @ryde.test" },
		"bad phone":      func(a *usersuc.Account) { a.Phone = "call me" },
		"short phone":    func(a *usersuc.Account) { a.Phone = "12345" },
	}
	for name, mutate := range cases {
		a := account("bob")
		mutate(&a)
		_, err := s.UC.RegisterPassenger(s.Ctx, a)
		s.True(cerr.Is(err, cerr.KindValidation), "%s: got %v", name, err)
	}
	us, err := s.UC.List(s.Ctx)
	s.Require().NoError(err)
	s.Empty(us)
}

func (s *UsersUseCaseTestSuite) TestRegisterDriver() {
	d, err := s.UC.RegisterDriver(s.Ctx, usersuc.DriverAccount{
		Account:       account("carl"),
		LicenseNumber: "GP-1",
		VehicleInfo:   "VW Polo",
		Location:      "rosebank",
	})
	s.Require().NoError(err)
	s.True(d.IsDriver())
	s.True(d.Driver.IsAvailable)
	s.Equal("Rosebank", d.Driver.LocationName)

	_, err = s.UC.RegisterDriver(s.Ctx, usersuc.DriverAccount{
		Account:       account("dina"),
		LicenseNumber: "GP-2",
		VehicleInfo:   "VW Polo",
		Location:      "Sandt",
	})
	s.True(cerr.Is(err, cerr.KindValidation), "got %v", err)
	s.Contains(err.Error(), "Sandton")

	d, err = s.UC.UpdateLocation(s.Ctx, d.ID, "Midrand")
	s.Require().NoError(err)
	s.Equal("Midrand", d.Driver.LocationName)
}

func (s *UsersUseCaseTestSuite) TestLogin() {
	_, err := s.UC.RegisterPassenger(s.Ctx, account("erin"))
	s.Require().NoError(err)

	u, err := s.UC.Login(s.Ctx, "Erin", "secret1")
	s.Require().NoError(err)
	s.Equal("erin", u.Username)

	_, err = s.UC.Login(s.Ctx, "erin", "secret2")
	s.True(cerr.Is(err, cerr.KindAuthentication))
	_, err = s.UC.Login(s.Ctx, "nobody", "secret1")
	s.True(cerr.Is(err, cerr.KindAuthentication))
}

func (s *UsersUseCaseTestSuite) TestHashedPasswords() {
	uc := s.newUseCase(usersuc.WithPasswordHasher(scram.SHA256(), 4096))
	u, err := uc.RegisterPassenger(s.Ctx, account("fred"))
	s.Require().NoError(err)
	s.True(strings.HasPrefix(u.Password, "SCRAM-SHA-256$4096:"))

	_, err = uc.Login(s.Ctx, "fred", "secret1")
	s.NoError(err)
	_, err = uc.Login(s.Ctx, "fred", u.Password)
	s.True(cerr.Is(err, cerr.KindAuthentication))
}

func (s *UsersUseCaseTestSuite) TestAdminLogin() {
	s.NoError(s.UC.AdminLogin("admin", "admin123"))
	s.True(cerr.Is(s.UC.AdminLogin("admin", "admin"), cerr.KindAuthentication))
	s.True(cerr.Is(s.UC.AdminLogin("root", "admin123"), cerr.KindAuthentication))

	hash, err := scram.SHA256().Hash("t0p-secret", "", 4096)
	s.Require().NoError(err)
	uc := s.newUseCase(usersuc.WithAdmin(usersuc.AdminCredentials{
		Username: "ops", Password: hash,
	}))
	s.NoError(uc.AdminLogin("OPS", "t0p-secret"))

	uc = s.newUseCase()
	s.True(cerr.Is(uc.AdminLogin("admin", "admin123"), cerr.KindAuthentication))
}

func (s *UsersUseCaseTestSuite) TestWallet() {
	u, err := s.UC.RegisterPassenger(s.Ctx, account("gina"))
	s.Require().NoError(err)

	bal, err := s.UC.AddFunds(s.Ctx, u.ID, model.NewMoney(25.5))
	s.Require().NoError(err)
	s.Equal(model.NewMoney(125.5), bal)
	bal, err = s.UC.Balance(s.Ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(model.NewMoney(125.5), bal)

	_, err = s.UC.AddFunds(s.Ctx, u.ID, 0)
	s.True(cerr.Is(err, cerr.KindValidation))
	_, err = s.UC.AddFunds(s.Ctx, u.ID+100, model.NewMoney(1))
	s.True(cerr.Is(err, cerr.KindNotFound))
}

func (s *UsersUseCaseTestSuite) TestAvailabilityWithActiveRide() {
	d, err := s.UC.RegisterDriver(s.Ctx, usersuc.DriverAccount{
		Account:       account("hank"),
		LicenseNumber: "GP-3",
		VehicleInfo:   "Kia Rio",
		Location:      "Downtown",
	})
	s.Require().NoError(err)
	d, err = s.UC.SetAvailability(s.Ctx, d.ID, false)
	s.Require().NoError(err)
	s.False(d.Driver.IsAvailable)

	driverID := d.ID
	now := time.Now()
	err = s.Pool.Conn(s.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			_, err := ridesrp.New().Tx(tx).Add(ctx, &model.Ride{
				PassengerID: 99,
				DriverID:    &driverID,
				Status:      model.RideStatusAccepted,
				RequestedAt: now,
				AcceptedAt:  &now,
			})
			return err
		})
	})
	s.Require().NoError(err)

	_, err = s.UC.SetAvailability(s.Ctx, d.ID, true)
	s.True(cerr.Is(err, cerr.KindConflict), "got %v", err)
}
