// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"time"
)

// Ride models one trip from the pickup to the drop-off location.
//
// DriverID is set if and only if the ride was accepted by a driver,
// while CandidateDriverID records the driver which was selected by the
// matching logic when the ride was requested (as a suggestion, since
// any eligible driver may accept an open request). Fare is computed
// once at request time and is never recalculated.
type Ride struct {
	ID                int
	PassengerID       int
	DriverID          *int
	CandidateDriverID *int
	PickupLocation    string
	DropOffLocation   string
	Pickup            Coordinate // resolved pickup coordinates, if known
	DistanceKm        float64
	Fare              Money
	Status            RideStatus

	RequestedAt time.Time
	AcceptedAt  *time.Time
	StartedAt   *time.Time // when the ride entered InProgress
	CompletedAt *time.Time
	CancelledAt *time.Time
	CancelledBy *int // ID of the user who cancelled the ride

	// Version is incremented by every persisted update, so an update
	// which was prepared from an older copy of the ride is rejected.
	Version int
}

// IsActive reports whether r is neither completed nor cancelled.
func (r *Ride) IsActive() bool {
	return r.Status.IsActive()
}

// HasDriver reports whether r was accepted by the driverID driver.
func (r *Ride) HasDriver(driverID int) bool {
	return r.DriverID != nil && *r.DriverID == driverID
}

// Involves reports whether userID is the passenger or the driver of r.
func (r *Ride) Involves(userID int) bool {
	return r.PassengerID == userID || r.HasDriver(userID)
}

// Route returns a human readable "pickup → drop-off" description.
func (r *Ride) Route() string {
	return fmt.Sprintf("%s → %s", r.PickupLocation, r.DropOffLocation)
}

// Clone returns a deep copy of r.
func (r *Ride) Clone() *Ride {
	c := *r
	c.DriverID = cloneInt(r.DriverID)
	c.CandidateDriverID = cloneInt(r.CandidateDriverID)
	c.AcceptedAt = cloneTime(r.AcceptedAt)
	c.StartedAt = cloneTime(r.StartedAt)
	c.CompletedAt = cloneTime(r.CompletedAt)
	c.CancelledAt = cloneTime(r.CancelledAt)
	c.CancelledBy = cloneInt(r.CancelledBy)
	return &c
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
