// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// UserType is the discriminator of the User variants. Although this
// enum is numeric, it is persisted as a string ("Passenger" or
// "Driver") in the UserType field of each user record.
type UserType int

// Valid values for the UserType enum.
const (
	UserTypeInvalid UserType = iota // zero value is invalid

	UserTypePassenger // requests rides and pays for them
	UserTypeDriver    // accepts rides and earns their fares
)

// ErrUnknownUserType indicates that a given string may not be parsed
// as a known user type discriminator. The caller of ParseUserType
// already knows the rejected string, so it is not repeated here.
var ErrUnknownUserType = errors.New("unknown user type")

// UserTypeError indicates an invalid numeric user type.
type UserTypeError int

// Error implements the error interface.
func (e UserTypeError) Error() string {
	return fmt.Sprintf("invalid user type: %d", e)
}

// Validate returns nil if ut is a known user type, otherwise, an
// instance of UserTypeError will be returned.
func (ut UserType) Validate() error {
	switch ut {
	case UserTypePassenger, UserTypeDriver:
		return nil
	default:
		return UserTypeError(ut)
	}
}

// String returns the persisted discriminator of ut. Invalid user types
// are formatted with their numeric value instead of panicking since
// they may be printed while reporting errors.
func (ut UserType) String() string {
	switch ut {
	case UserTypePassenger:
		return "Passenger"
	case UserTypeDriver:
		return "Driver"
	default:
		return fmt.Sprintf("UserType(%d)", int(ut))
	}
}

// ParseUserType parses a persisted discriminator. For unknown strings,
// UserTypeInvalid and ErrUnknownUserType will be returned.
func ParseUserType(s string) (UserType, error) {
	switch s {
	case "Passenger":
		return UserTypePassenger, nil
	case "Driver":
		return UserTypeDriver, nil
	default:
		return UserTypeInvalid, ErrUnknownUserType
	}
}
