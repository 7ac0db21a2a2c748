// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ridesuc

import (
	"errors"
	"fmt"
	"time"

	"github.com/momeni/ryde/pkg/core/model"
)

// Option is a functional option for the rides use case.
type Option func(uc *UseCase) error

// WithFareSchedule option configures the base fare and per kilometer
// rate of the new rides.
func WithFareSchedule(fs model.FareSchedule) Option {
	return func(uc *UseCase) error {
		switch {
		case fs.Base < 0:
			return fmt.Errorf("base fare (%s) is negative", fs.Base)
		case fs.PerKm <= 0:
			return fmt.Errorf("per km rate (%s) is not positive", fs.PerKm)
		case uc.fares != nil:
			return errors.New("fare schedule is already configured")
		}
		uc.fares = &fs
		return nil
	}
}

// WithMatchRadius option configures the maximum distance between a
// candidate driver and the pickup location.
func WithMatchRadius(km float64) Option {
	return func(uc *UseCase) error {
		if km <= 0 {
			return fmt.Errorf("match radius (%g km) is not positive", km)
		}
		if uc.radiusKm != 0 {
			return errors.New("match radius is already configured")
		}
		uc.radiusKm = km
		return nil
	}
}

// WithClock option replaces time.Now for the ride timestamps.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock must be non-nil")
		}
		uc.now = now
		return nil
	}
}

// WithObserver option registers an observer of the ride transitions.
func WithObserver(o Observer) Option {
	return func(uc *UseCase) error {
		if o == nil {
			return errors.New("observer must be non-nil")
		}
		uc.observer = o
		return nil
	}
}
