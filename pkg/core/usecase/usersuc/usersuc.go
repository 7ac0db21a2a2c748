// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package usersuc contains the users UseCase which supports the
// registration and login of passengers and drivers. It also covers
// the profile operations such as wallet top-ups or the driver
// availability updates.
package usersuc

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
	"github.com/momeni/ryde/pkg/core/scram"
)

// Locator resolves the location names which drivers report.
type Locator interface {
	Locate(name string) (model.Location, bool)
	Suggest(prefix string) []string
}

// AdminCredentials holds the admin username and its stored password,
// which may be a plaintext or a SCRAM hash string.
type AdminCredentials struct {
	Username string
	Password string
}

// errBadCredentials is returned for unknown usernames and for wrong
// passwords alike, so logins do not reveal registered usernames.
var errBadCredentials = errors.New("invalid username or password")

// UseCase represents a users use case.
type UseCase struct {
	pool    repo.Pool
	usersrp repo.Users
	ridesrp repo.Rides
	locator Locator
	checker scram.CredentialChecker

	admin         *AdminCredentials
	initialWallet *model.Money
	hasher        scram.Hasher
	hashIters     int
}

// New instantiates a users use case. The checker is used for both of
// user and admin logins. The admin login is disabled unless the
// WithAdmin option is passed.
func New(
	p repo.Pool, u repo.Users, r repo.Rides,
	l Locator, checker scram.CredentialChecker,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pool: p, usersrp: u, ridesrp: r, locator: l, checker: checker,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	// now, deal with defaults
	if uc.initialWallet == nil {
		w := model.DefaultWalletBalance
		uc.initialWallet = &w
	}
	return uc, nil
}

// storedPassword returns the pass password as it should be persisted.
func (users *UseCase) storedPassword(pass string) (string, error) {
	if users.hasher == nil {
		return pass, nil
	}
	h, err := users.hasher.Hash(pass, "", users.hashIters)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return h, nil
}

// Login authenticates a passenger or driver. Unknown usernames and
// wrong passwords fail with the same authentication error.
func (users *UseCase) Login(
	ctx context.Context, username, pass string,
) (u *model.User, err error) {
	err = users.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		u, err = users.usersrp.Conn(c).ByUsername(ctx, username)
		return err
	})
	switch {
	case cerr.Is(err, cerr.KindNotFound):
		return nil, cerr.Authentication(errBadCredentials)
	case err != nil:
		return nil, err
	}
	ok, err := users.checker.Check(u.Password, pass)
	switch {
	case err != nil:
		return nil, cerr.Authentication(fmt.Errorf(
			"checking password of %q: %w", u.Username, err,
		))
	case !ok:
		return nil, cerr.Authentication(errBadCredentials)
	case !u.IsActive:
		return nil, cerr.Authentication(fmt.Errorf(
			"user %q is deactivated", u.Username,
		))
	}
	return u, nil
}

// AdminLogin authenticates the admin using the configured credentials.
func (users *UseCase) AdminLogin(username, pass string) error {
	if users.admin == nil {
		return cerr.Authentication(errors.New("admin login is disabled"))
	}
	if !model.SameUsername(username, users.admin.Username) {
		return cerr.Authentication(errBadCredentials)
	}
	ok, err := users.checker.Check(users.admin.Password, pass)
	switch {
	case err != nil:
		return cerr.Authentication(fmt.Errorf("checking admin password: %w", err))
	case !ok:
		return cerr.Authentication(errBadCredentials)
	}
	return nil
}

// Profile returns the uid user.
func (users *UseCase) Profile(ctx context.Context, uid int) (u *model.User, err error) {
	err = users.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		u, err = users.usersrp.Conn(c).ByID(ctx, uid)
		return err
	})
	if err != nil {
		u = nil
	}
	return
}

// List returns all users.
func (users *UseCase) List(ctx context.Context) (us []*model.User, err error) {
	err = users.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		us, err = users.usersrp.Conn(c).List(ctx)
		return err
	})
	return
}

// Suggest returns known location names which start with prefix.
func (users *UseCase) Suggest(prefix string) []string {
	return users.locator.Suggest(prefix)
}

// update runs f over the uid user in a transaction and persists the
// user if f returns no error.
func (users *UseCase) update(
	ctx context.Context, uid int,
	f func(ctx context.Context, u *model.User, rides repo.RidesTxQueryer) error,
) (u *model.User, err error) {
	err = users.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := users.usersrp.Tx(tx)
			if u, err = q.ByID(ctx, uid); err != nil {
				return err
			}
			if err = f(ctx, u, users.ridesrp.Tx(tx)); err != nil {
				return err
			}
			return q.Update(ctx, u)
		})
	})
	if err != nil {
		u = nil
	}
	return
}
