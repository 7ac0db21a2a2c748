// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ridesrs

import (
	"time"

	"github.com/momeni/ryde/pkg/core/model"
)

type rideResp struct {
	ID                int         `json:"id"`
	PassengerID       int         `json:"passenger_id"`
	DriverID          *int        `json:"driver_id"`
	CandidateDriverID *int        `json:"candidate_driver_id,omitempty"`
	Pickup            string      `json:"pickup"`
	DropOff           string      `json:"drop_off"`
	DistanceKm        float64     `json:"distance_km"`
	Fare              model.Money `json:"fare"`
	Status            string      `json:"status"`
	RequestedAt       time.Time   `json:"requested_at"`
	AcceptedAt        *time.Time  `json:"accepted_at,omitempty"`
	StartedAt         *time.Time  `json:"started_at,omitempty"`
	CompletedAt       *time.Time  `json:"completed_at,omitempty"`
	CancelledAt       *time.Time  `json:"cancelled_at,omitempty"`
	CancelledBy       *int        `json:"cancelled_by,omitempty"`
}

func newRideResp(r *model.Ride) *rideResp {
	return &rideResp{
		ID:                r.ID,
		PassengerID:       r.PassengerID,
		DriverID:          r.DriverID,
		CandidateDriverID: r.CandidateDriverID,
		Pickup:            r.PickupLocation,
		DropOff:           r.DropOffLocation,
		DistanceKm:        r.DistanceKm,
		Fare:              r.Fare,
		Status:            r.Status.String(),
		RequestedAt:       r.RequestedAt,
		AcceptedAt:        r.AcceptedAt,
		StartedAt:         r.StartedAt,
		CompletedAt:       r.CompletedAt,
		CancelledAt:       r.CancelledAt,
		CancelledBy:       r.CancelledBy,
	}
}
