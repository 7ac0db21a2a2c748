// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/momeni/ryde/pkg/core/model"
)

// RecentRides is the number of rides in the personal reports.
const RecentRides = 5

// Driver is the report of one driver.
type Driver struct {
	UserID         int           `json:"user_id"`
	Username       string        `json:"username"`
	LicenseNumber  string        `json:"license_number"`
	VehicleInfo    string        `json:"vehicle_info"`
	IsAvailable    bool          `json:"is_available"`
	Rating         float64       `json:"rating"`
	Ratings        int           `json:"ratings"`
	Earnings       model.Money   `json:"earnings"`
	CompletedRides int           `json:"completed_rides"`
	AvgPerRide     model.Money   `json:"avg_per_ride"`
	Recent         []*model.Ride `json:"recent"`
}

// Passenger is the report of one passenger.
type Passenger struct {
	UserID        int           `json:"user_id"`
	Username      string        `json:"username"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	PaymentMethod string        `json:"payment_method"`
	Balance       model.Money   `json:"balance"`
	Rides         int           `json:"rides"`
	TotalSpent    model.Money   `json:"total_spent"`
	AvgPerRide    model.Money   `json:"avg_per_ride"`
	Recent        []*model.Ride `json:"recent"`
}

// NewDriver computes the report of the d driver. The recent rides are
// the last completed rides of d.
func NewDriver(d *model.User, rides []*model.Ride) *Driver {
	rep := &Driver{
		UserID:   d.ID,
		Username: d.Username,
		Rating:   d.AverageRating(),
		Ratings:  len(d.ReceivedRatings),
		Recent:   make([]*model.Ride, 0),
	}
	if d.Driver == nil {
		return rep
	}
	rep.LicenseNumber = d.Driver.LicenseNumber
	rep.VehicleInfo = d.Driver.VehicleInfo
	rep.IsAvailable = d.Driver.IsAvailable
	rep.Earnings = d.Driver.TotalEarnings
	rep.CompletedRides = len(d.Driver.CompletedRides)
	rep.AvgPerRide = average(rep.Earnings, rep.CompletedRides)

	done := filter(rides, func(r *model.Ride) bool {
		return r.Status == model.RideStatusCompleted && r.HasDriver(d.ID)
	})
	slices.SortStableFunc(done, func(a, b *model.Ride) int {
		return cmp.Or(
			completedAt(b).Compare(completedAt(a)),
			cmp.Compare(b.ID, a.ID),
		)
	})
	rep.Recent = append(rep.Recent, done[:min(RecentRides, len(done))]...)
	return rep
}

func completedAt(r *model.Ride) time.Time {
	if r.CompletedAt == nil {
		return time.Time{}
	}
	return *r.CompletedAt
}

// NewPassenger computes the report of the p passenger. Spending only
// considers the completed rides, while the recent rides include rides
// of all statuses.
func NewPassenger(p *model.User, rides []*model.Ride) *Passenger {
	rep := &Passenger{
		UserID:   p.ID,
		Username: p.Username,
		Email:    p.Email,
		Phone:    p.Phone,
		Recent:   make([]*model.Ride, 0),
	}
	if p.Passenger != nil {
		rep.PaymentMethod = p.Passenger.PreferredPaymentMethod
		rep.Balance = p.Passenger.WalletBalance
	}
	mine := filter(rides, func(r *model.Ride) bool {
		return r.PassengerID == p.ID
	})
	for _, r := range mine {
		if r.Status == model.RideStatusCompleted {
			rep.Rides++
			rep.TotalSpent += r.Fare
		}
	}
	rep.AvgPerRide = average(rep.TotalSpent, rep.Rides)
	slices.SortStableFunc(mine, func(a, b *model.Ride) int {
		return cmp.Or(
			b.RequestedAt.Compare(a.RequestedAt),
			cmp.Compare(b.ID, a.ID),
		)
	})
	rep.Recent = append(rep.Recent, mine[:min(RecentRides, len(mine))]...)
	return rep
}
