// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package usersuc

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/log"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
)

var (
	emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRE = regexp.MustCompile(`^\+?[0-9\-\s]{7,15}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	regex := func(re *regexp.Regexp) validator.Func {
		return func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}
	}
	if err := v.RegisterValidation("ryde_email", regex(emailRE)); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("ryde_phone", regex(phoneRE)); err != nil {
		panic(err)
	}
	return v
}

// Account contains the common registration fields of all users.
type Account struct {
	Username string `validate:"required,max=32"`
	Password string `validate:"min=6,max=64"`
	Email    string `validate:"ryde_email"`
	Phone    string `validate:"ryde_phone"`
}

// DriverAccount contains the registration fields of a driver.
type DriverAccount struct {
	Account
	LicenseNumber string `validate:"required,max=32"`
	VehicleInfo   string `validate:"required,max=64"`
	Location      string `validate:"required"`
}

// validationError converts the validator errors to a validation error
// naming all of the invalid fields.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return cerr.Validation(err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return cerr.Validation(fmt.Errorf(
		"invalid %s: %w", strings.Join(fields, ", "), err,
	))
}

func (a *Account) normalize() {
	a.Username = strings.TrimSpace(a.Username)
	a.Email = strings.TrimSpace(a.Email)
	a.Phone = strings.TrimSpace(a.Phone)
}

// RegisterPassenger creates a passenger with the initial wallet
// balance. Usernames are unique, ignoring their case.
func (users *UseCase) RegisterPassenger(
	ctx context.Context, a Account,
) (*model.User, error) {
	a.normalize()
	if err := validate.Struct(&a); err != nil {
		return nil, validationError(err)
	}
	pass, err := users.storedPassword(a.Password)
	if err != nil {
		return nil, err
	}
	u := model.NewPassenger(a.Username, pass, a.Email, a.Phone)
	u.Passenger.WalletBalance = *users.initialWallet
	return users.add(ctx, u)
}

// RegisterDriver creates an available driver at the given location,
// which must be a known location name.
func (users *UseCase) RegisterDriver(
	ctx context.Context, a DriverAccount,
) (*model.User, error) {
	a.normalize()
	a.LicenseNumber = strings.TrimSpace(a.LicenseNumber)
	a.VehicleInfo = strings.TrimSpace(a.VehicleInfo)
	if err := validate.Struct(&a); err != nil {
		return nil, validationError(err)
	}
	loc, err := users.locate(a.Location)
	if err != nil {
		return nil, err
	}
	pass, err := users.storedPassword(a.Password)
	if err != nil {
		return nil, err
	}
	u := model.NewDriver(
		a.Username, pass, a.Email, a.Phone,
		a.LicenseNumber, a.VehicleInfo, loc,
	)
	return users.add(ctx, u)
}

func (users *UseCase) locate(name string) (model.Location, error) {
	loc, ok := users.locator.Locate(name)
	if ok {
		return loc, nil
	}
	err := fmt.Errorf("unknown location %q", name)
	if s := users.locator.Suggest(name); len(s) > 0 {
		err = fmt.Errorf("%w (did you mean %s?)", err, strings.Join(s, ", "))
	}
	return model.Location{}, cerr.Validation(err)
}

func (users *UseCase) add(ctx context.Context, u *model.User) (added *model.User, err error) {
	err = users.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			added, err = users.usersrp.Tx(tx).Add(ctx, u)
			return err
		})
	})
	if err != nil {
		log.Warn(ctx, "registration is rejected", log.Err("err", err))
		return nil, err
	}
	log.Info(
		ctx, "user is registered",
		log.UserID(added.ID), log.Status("type", added.Type),
	)
	return added, nil
}
