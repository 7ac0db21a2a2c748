// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// RideStatus specifies the lifecycle state of a Ride. It is persisted
// as its string representation for readability of the rides file.
//
// Rides move forward through the following states, one step at a time:
//
//	Requested -> Accepted -> EnRouteToPickup -> ArrivedAtPickup
//	          -> InProgress -> Completed
//
// and may be Cancelled from any non-terminal state.
type RideStatus int

// Valid values for the RideStatus enum, in their lifecycle order.
const (
	RideStatusInvalid RideStatus = iota // zero value is invalid

	RideStatusRequested       // waiting for a driver to accept it
	RideStatusAccepted        // a driver holds the ride
	RideStatusEnRouteToPickup // driver is heading to the pickup
	RideStatusArrivedAtPickup // driver is waiting at the pickup
	RideStatusInProgress      // passenger is on board
	RideStatusCompleted       // terminal, payment was processed
	RideStatusCancelled       // terminal, no payment was processed
)

// RideStatuses lists all valid statuses in their lifecycle order.
var RideStatuses = []RideStatus{
	RideStatusRequested,
	RideStatusAccepted,
	RideStatusEnRouteToPickup,
	RideStatusArrivedAtPickup,
	RideStatusInProgress,
	RideStatusCompleted,
	RideStatusCancelled,
}

var rideStatusNames = map[RideStatus]string{
	RideStatusRequested:       "Requested",
	RideStatusAccepted:        "Accepted",
	RideStatusEnRouteToPickup: "EnRouteToPickup",
	RideStatusArrivedAtPickup: "ArrivedAtPickup",
	RideStatusInProgress:      "InProgress",
	RideStatusCompleted:       "Completed",
	RideStatusCancelled:       "Cancelled",
}

// ErrUnknownRideStatus indicates that a string is not a known status.
var ErrUnknownRideStatus = errors.New("unknown ride status")

// RideStatusError indicates an invalid numeric ride status.
type RideStatusError int

// Error implements the error interface.
func (e RideStatusError) Error() string {
	return fmt.Sprintf("invalid ride status: %d", e)
}

// Validate returns nil if rs is a known ride status.
func (rs RideStatus) Validate() error {
	if _, ok := rideStatusNames[rs]; !ok {
		return RideStatusError(rs)
	}
	return nil
}

// String returns the persisted name of rs.
func (rs RideStatus) String() string {
	if n, ok := rideStatusNames[rs]; ok {
		return n
	}
	return fmt.Sprintf("RideStatus(%d)", int(rs))
}

// ParseRideStatus parses a persisted status name. For unknown names,
// RideStatusInvalid and ErrUnknownRideStatus will be returned.
func ParseRideStatus(s string) (RideStatus, error) {
	for rs, n := range rideStatusNames {
		if n == s {
			return rs, nil
		}
	}
	return RideStatusInvalid, ErrUnknownRideStatus
}

// MarshalText encodes rs by its name. Invalid statuses fail.
func (rs RideStatus) MarshalText() ([]byte, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return []byte(rs.String()), nil
}

// UnmarshalText decodes a status name into rs.
func (rs *RideStatus) UnmarshalText(text []byte) error {
	v, err := ParseRideStatus(string(text))
	if err != nil {
		return fmt.Errorf("%q: %w", text, err)
	}
	*rs = v
	return nil
}

// IsTerminal reports whether rs is Completed or Cancelled.
func (rs RideStatus) IsTerminal() bool {
	return rs == RideStatusCompleted || rs == RideStatusCancelled
}

// IsActive reports whether a ride with the rs status is still active,
// that is, valid and not terminal.
func (rs RideStatus) IsActive() bool {
	return rs.Validate() == nil && !rs.IsTerminal()
}

// Next returns the status which directly follows rs in the forward
// progression. It returns false for terminal or invalid statuses.
func (rs RideStatus) Next() (RideStatus, bool) {
	if !rs.IsActive() {
		return RideStatusInvalid, false
	}
	return rs + 1, true
}

// CanTransitionTo reports whether a ride may move from rs to the next
// status. Forward moves must follow the progression one step at a time
// and any active ride may be cancelled.
func (rs RideStatus) CanTransitionTo(next RideStatus) bool {
	if !rs.IsActive() {
		return false
	}
	if next == RideStatusCancelled {
		return true
	}
	n, _ := rs.Next()
	return n == next
}
