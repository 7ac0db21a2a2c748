// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package usersuc

import (
	"errors"
	"fmt"

	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/scram"
)

// Option is a functional option for the users use case.
type Option func(uc *UseCase) error

// WithAdmin option enables the admin login with the given credentials.
func WithAdmin(creds AdminCredentials) Option {
	return func(uc *UseCase) error {
		if creds.Username == "" || creds.Password == "" {
			return errors.New("admin username and password are required")
		}
		if uc.admin != nil {
			return errors.New("admin is already configured")
		}
		uc.admin = &creds
		return nil
	}
}

// WithInitialWallet option configures the wallet balance of the newly
// registered passengers.
func WithInitialWallet(m model.Money) Option {
	return func(uc *UseCase) error {
		if m < 0 {
			return fmt.Errorf("initial wallet (%s) is negative", m)
		}
		if uc.initialWallet != nil {
			return errors.New("initial wallet is already configured")
		}
		uc.initialWallet = &m
		return nil
	}
}

// WithPasswordHasher option makes the use case to store the SCRAM
// hash of new passwords instead of the plaintext ones.
func WithPasswordHasher(h scram.Hasher, iters int) Option {
	return func(uc *UseCase) error {
		if h == nil {
			return errors.New("hasher must be non-nil")
		}
		if iters < 4096 {
			return fmt.Errorf("iters (%d) is less than 4096", iters)
		}
		uc.hasher, uc.hashIters = h, iters
		return nil
	}
}
