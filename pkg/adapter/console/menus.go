// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package console

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/momeni/ryde/pkg/core/log"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/usecase/usersuc"
)

// session is one login of a passenger, driver, or the admin.
type session struct {
	id     string
	userID int    // zero for the admin
	name   string // username of the logged in user
}

// newSession starts a session and returns a context whose log records
// carry its session and user identifiers.
func newSession(
	ctx context.Context, userID int, name string,
) (context.Context, *session) {
	s := &session{id: uuid.NewString(), userID: userID, name: name}
	ctx = log.With(ctx, log.Session(s.id), log.UserID(userID))
	log.Info(ctx, "session started", slog.String("username", name))
	return ctx, s
}

func (s *session) end(ctx context.Context) {
	log.Info(ctx, "session ended")
}

func (c *Console) mainMenu(ctx context.Context) error {
	for {
		choice, err := c.choose(
			"Main Menu",
			"Register as Passenger",
			"Register as Driver",
			"Login",
			"Admin Login",
			"View System Report",
			"Exit",
		)
		if err != nil {
			return err
		}
		switch choice {
		case 1:
			err = c.registerPassenger(ctx)
		case 2:
			err = c.registerDriver(ctx)
		case 3:
			err = c.login(ctx)
		case 4:
			err = c.adminLogin(ctx)
		case 5:
			err = c.systemReport(ctx)
		case 6:
			c.info("Thank you for using Ryde!")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) askAccount() (a usersuc.Account, err error) {
	if a.Username, err = c.ask("Username"); err != nil {
		return
	}
	if a.Password, err = c.ask("Password (min 6 characters)"); err != nil {
		return
	}
	if a.Email, err = c.ask("Email"); err != nil {
		return
	}
	a.Phone, err = c.ask("Phone number")
	return
}

func (c *Console) registerPassenger(ctx context.Context) error {
	c.header("Register as Passenger")
	a, err := c.askAccount()
	if err != nil {
		return err
	}
	u, err := c.uc.Users.RegisterPassenger(ctx, a)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.success(
		"Passenger %s registered with id #%d and a wallet of %s.",
		u.Username, u.ID, u.Passenger.WalletBalance,
	)
	return nil
}

func (c *Console) registerDriver(ctx context.Context) error {
	c.header("Register as Driver")
	a, err := c.askAccount()
	if err != nil {
		return err
	}
	d := usersuc.DriverAccount{Account: a}
	if d.LicenseNumber, err = c.ask("License number"); err != nil {
		return err
	}
	if d.VehicleInfo, err = c.ask("Vehicle info"); err != nil {
		return err
	}
	c.info("Known locations include %s.", c.suggestions(""))
	if d.Location, err = c.ask("Current location"); err != nil {
		return err
	}
	u, err := c.uc.Users.RegisterDriver(ctx, d)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.success(
		"Driver %s registered with id #%d at %s.",
		u.Username, u.ID, u.Driver.LocationName,
	)
	return nil
}

func (c *Console) suggestions(prefix string) string {
	return strings.Join(c.uc.Users.Suggest(prefix), ", ")
}

func (c *Console) login(ctx context.Context) error {
	c.header("Login")
	username, err := c.ask("Username")
	if err != nil {
		return err
	}
	pass, err := c.ask("Password")
	if err != nil {
		return err
	}
	u, err := c.uc.Users.Login(ctx, username, pass)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	ctx, s := newSession(ctx, u.ID, u.Username)
	defer s.end(ctx)
	c.success("Welcome back, %s!", u.Username)
	switch u.Type {
	case model.UserTypePassenger:
		return c.passengerMenu(ctx, s)
	case model.UserTypeDriver:
		return c.driverMenu(ctx, s)
	}
	c.failure("Unsupported user type %s.", u.Type)
	return nil
}

func (c *Console) adminLogin(ctx context.Context) error {
	c.header("Admin Login")
	username, err := c.ask("Username")
	if err != nil {
		return err
	}
	pass, err := c.ask("Password")
	if err != nil {
		return err
	}
	if err = c.uc.Users.AdminLogin(username, pass); err != nil {
		log.Warn(ctx, "admin login is rejected", log.Err("err", err))
		c.report(ctx, err)
		return nil
	}
	ctx, s := newSession(ctx, 0, username)
	defer s.end(ctx)
	c.success("Logged in as the administrator.")
	return c.adminMenu(ctx, s)
}

func (c *Console) systemReport(ctx context.Context) error {
	rep, err := c.uc.Reports.System(ctx)
	if err != nil {
		c.report(ctx, err)
		return nil
	}
	c.printSystem(rep)
	return nil
}
