// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ridesrp

import (
	"context"
	"fmt"
	"time"

	"github.com/momeni/ryde/pkg/adapter/db/jsonfile"
	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/model"
)

// File is the name of the rides snapshot file.
const File = "rides.json"

// FirstID is the ID of the first ride in an empty rides collection.
const FirstID = 1000

type jRide struct {
	ID                int              `json:"Id"`
	PassengerID       int              `json:"PassengerId"`
	DriverID          *int             `json:"DriverId"`
	CandidateDriverID *int             `json:"CandidateDriverId,omitempty"`
	PickupLocation    string           `json:"PickupLocation"`
	DropOffLocation   string           `json:"DropOffLocation"`
	PickupLatitude    float64          `json:"PickupLatitude"`
	PickupLongitude   float64          `json:"PickupLongitude"`
	DistanceKm        float64          `json:"DistanceKm"`
	Fare              model.Money      `json:"Fare"`
	Status            model.RideStatus `json:"Status"`
	RequestedAt       time.Time        `json:"RequestedAt"`
	AcceptedAt        *time.Time       `json:"AcceptedAt"`
	StartedAt         *time.Time       `json:"StartedAt,omitempty"`
	CompletedAt       *time.Time       `json:"CompletedAt"`
	CancelledAt       *time.Time       `json:"CancelledAt,omitempty"`
	CancelledBy       *int             `json:"CancelledBy,omitempty"`
	Version           int              `json:"Version"`
}

var rides = &jsonfile.Collection[jRide]{
	File:    File,
	ID:      func(r *jRide) *int { return &r.ID },
	FirstID: FirstID,
	Check: func(r *jRide) error {
		if err := r.Status.Validate(); err != nil {
			return cerr.Validation(fmt.Errorf("ride #%d: %w", r.ID, err))
		}
		return nil
	},
}

func (jr *jRide) Model() *model.Ride {
	r := &model.Ride{
		ID:                jr.ID,
		PassengerID:       jr.PassengerID,
		DriverID:          jr.DriverID,
		CandidateDriverID: jr.CandidateDriverID,
		PickupLocation:    jr.PickupLocation,
		DropOffLocation:   jr.DropOffLocation,
		Pickup: model.Coordinate{
			Lat: jr.PickupLatitude, Lon: jr.PickupLongitude,
		},
		DistanceKm:  jr.DistanceKm,
		Fare:        jr.Fare,
		Status:      jr.Status,
		RequestedAt: jr.RequestedAt,
		AcceptedAt:  jr.AcceptedAt,
		StartedAt:   jr.StartedAt,
		CompletedAt: jr.CompletedAt,
		CancelledAt: jr.CancelledAt,
		CancelledBy: jr.CancelledBy,
		Version:     jr.Version,
	}
	return r.Clone()
}

func fromModel(r *model.Ride) jRide {
	c := r.Clone()
	return jRide{
		ID:                c.ID,
		PassengerID:       c.PassengerID,
		DriverID:          c.DriverID,
		CandidateDriverID: c.CandidateDriverID,
		PickupLocation:    c.PickupLocation,
		DropOffLocation:   c.DropOffLocation,
		PickupLatitude:    c.Pickup.Lat,
		PickupLongitude:   c.Pickup.Lon,
		DistanceKm:        c.DistanceKm,
		Fare:              c.Fare,
		Status:            c.Status,
		RequestedAt:       c.RequestedAt,
		AcceptedAt:        c.AcceptedAt,
		StartedAt:         c.StartedAt,
		CompletedAt:       c.CompletedAt,
		CancelledAt:       c.CancelledAt,
		CancelledBy:       c.CancelledBy,
		Version:           c.Version,
	}
}

func List[Q jsonfile.Queryer](ctx context.Context, q Q) ([]*model.Ride, error) {
	jrs, err := jsonfile.LoadAll(ctx, q, rides)
	if err != nil {
		return nil, err
	}
	rs := make([]*model.Ride, 0, len(jrs))
	for i := range jrs {
		rs = append(rs, jrs[i].Model())
	}
	return rs, nil
}

func ByID[Q jsonfile.Queryer](ctx context.Context, q Q, id int) (*model.Ride, error) {
	jr, err := jsonfile.FindByID(ctx, q, rides, id)
	if err != nil {
		return nil, err
	}
	return jr.Model(), nil
}

func Add(ctx context.Context, tx *jsonfile.Tx, r *model.Ride) (*model.Ride, error) {
	if err := r.Status.Validate(); err != nil {
		return nil, cerr.Validation(err)
	}
	jr := fromModel(r)
	jr.Version = 1
	jr, err := jsonfile.AddOne(ctx, tx, rides, jr)
	if err != nil {
		return nil, err
	}
	return jr.Model(), nil
}

func Update(ctx context.Context, tx *jsonfile.Tx, r *model.Ride) error {
	cur, err := jsonfile.FindByID(ctx, tx, rides, r.ID)
	if err != nil {
		return err
	}
	if cur.Version != r.Version {
		return cerr.StaleState(fmt.Errorf(
			"ride #%d is at version %d, not %d",
			r.ID, cur.Version, r.Version,
		))
	}
	jr := fromModel(r)
	jr.Version++
	if err = jsonfile.UpdateOne(ctx, tx, rides, jr); err != nil {
		return err
	}
	r.Version = jr.Version
	return nil
}

func SaveAll(ctx context.Context, tx *jsonfile.Tx, rs []*model.Ride) error {
	jrs := make([]jRide, 0, len(rs))
	for _, r := range rs {
		jrs = append(jrs, fromModel(r))
	}
	return jsonfile.SaveAll(ctx, tx, rides, jrs)
}
