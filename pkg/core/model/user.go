// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the business-level models, also called entities or domain.
// This layer may not depend on outter layers, while all other layers
// may depend on it.
//
// Entities are plain records which refer to each other only by their
// integer identifiers. A User is a tagged variant: its Type field tells
// which one of the Passenger or Driver profiles is populated, so both
// the persistence adapters and the use cases switch on that tag instead
// of relying on a type hierarchy.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultWalletBalance is the wallet balance of a new passenger.
var DefaultWalletBalance = NewMoney(100)

// DefaultPaymentMethod is the preferred payment method of a passenger
// who did not choose another one.
const DefaultPaymentMethod = "Wallet"

// User models a registered user of the system, either a passenger or
// a driver. The common fields are kept here and the variant specific
// fields are kept in the Passenger and Driver profiles. Exactly one of
// them must be non-nil, matching the Type field (see Validate).
type User struct {
	ID        int       // assigned at creation time, immutable
	Username  string    // unique, compared case-insensitively
	Password  string    // plaintext or a SCRAM hash string
	Email     string    // contact email address
	Phone     string    // contact phone number
	CreatedAt time.Time // registration time
	IsActive  bool      // inactive users are never matched or logged in

	// ReceivedRatings holds the ratings which other users gave to this
	// user. Ratings are appended and never mutated.
	ReceivedRatings []Rating

	Type      UserType   // discriminator of the variant profiles
	Passenger *Passenger // non-nil iff Type is UserTypePassenger
	Driver    *Driver    // non-nil iff Type is UserTypeDriver
}

// Passenger contains the passenger specific fields of a User.
type Passenger struct {
	WalletBalance          Money  // remaining funds
	PreferredPaymentMethod string // only "Wallet" is processed
	RideHistory            []int  // IDs of completed rides
}

// Driver contains the driver specific fields of a User.
type Driver struct {
	IsAvailable     bool       // whether driver accepts new rides
	LicenseNumber   string     // driving license number
	VehicleInfo     string     // free-text vehicle description
	TotalEarnings   Money      // sum of the fares of completed rides
	CompletedRides  []int      // IDs of completed rides
	CurrentLocation Coordinate // last reported location
	LocationName    string     // name of CurrentLocation, if known
}

// NewPassenger returns an active passenger user with the default
// wallet balance and payment method. ID and CreatedAt are left for
// the repository to assign.
func NewPassenger(username, password, email, phone string) *User {
	return &User{
		Username: username,
		Password: password,
		Email:    email,
		Phone:    phone,
		IsActive: true,
		Type:     UserTypePassenger,
		Passenger: &Passenger{
			WalletBalance:          DefaultWalletBalance,
			PreferredPaymentMethod: DefaultPaymentMethod,
		},
	}
}

// NewDriver returns an active and available driver user which is
// located at the loc location.
func NewDriver(
	username, password, email, phone, license, vehicle string,
	loc Location,
) *User {
	return &User{
		Username: username,
		Password: password,
		Email:    email,
		Phone:    phone,
		IsActive: true,
		Type:     UserTypeDriver,
		Driver: &Driver{
			IsAvailable:     true,
			LicenseNumber:   license,
			VehicleInfo:     vehicle,
			CurrentLocation: loc.Coordinate,
			LocationName:    loc.Name,
		},
	}
}

// ErrVariantMismatch indicates that the populated profile of a User
// does not match its Type discriminator.
var ErrVariantMismatch = errors.New("profile does not match user type")

// Validate returns nil if u has a valid Type and exactly the matching
// profile is populated.
func (u *User) Validate() error {
	if err := u.Type.Validate(); err != nil {
		return err
	}
	switch {
	case u.Type == UserTypePassenger && u.Passenger != nil && u.Driver == nil:
		return nil
	case u.Type == UserTypeDriver && u.Driver != nil && u.Passenger == nil:
		return nil
	default:
		return fmt.Errorf("%s user: %w", u.Type, ErrVariantMismatch)
	}
}

// IsPassenger reports whether u is a passenger.
func (u *User) IsPassenger() bool {
	return u.Type == UserTypePassenger && u.Passenger != nil
}

// IsDriver reports whether u is a driver.
func (u *User) IsDriver() bool {
	return u.Type == UserTypeDriver && u.Driver != nil
}

// AverageRating returns the mean stars of the received ratings, or
// zero if u has not received any rating yet.
func (u *User) AverageRating() float64 {
	if len(u.ReceivedRatings) == 0 {
		return 0
	}
	total := 0
	for _, r := range u.ReceivedRatings {
		total += r.Stars
	}
	return float64(total) / float64(len(u.ReceivedRatings))
}

// SameUsername compares two usernames case-insensitively, ignoring
// their surrounding spaces.
func SameUsername(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Clone returns a deep copy of u, so it may be mutated without
// affecting the snapshot which u was read from.
func (u *User) Clone() *User {
	c := *u
	c.ReceivedRatings = append([]Rating(nil), u.ReceivedRatings...)
	if u.Passenger != nil {
		p := *u.Passenger
		p.RideHistory = append([]int(nil), u.Passenger.RideHistory...)
		c.Passenger = &p
	}
	if u.Driver != nil {
		d := *u.Driver
		d.CompletedRides = append([]int(nil), u.Driver.CompletedRides...)
		c.Driver = &d
	}
	return &c
}
