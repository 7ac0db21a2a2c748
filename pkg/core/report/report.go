// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package report aggregates statistics over snapshots of the users and
// rides collections. All functions are pure: they only read the given
// snapshots and never fail, yielding zero values for empty inputs.
package report

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/momeni/ryde/pkg/core/model"
)

// DefaultTopN is the number of entries in the top-N lists.
const DefaultTopN = 5

// Users summarizes the users collection.
type Users struct {
	Total            int     `json:"total"`
	Drivers          int     `json:"drivers"`
	AvailableDrivers int     `json:"available_drivers"`
	Passengers       int     `json:"passengers"`
	Active           int     `json:"active"`
	RatedDrivers     int     `json:"rated_drivers"`
	AvgDriverRating  float64 `json:"avg_driver_rating"`
}

// Rides summarizes the rides collection. Distances and durations only
// consider the completed rides.
type Rides struct {
	Total           int                      `json:"total"`
	ByStatus        map[model.RideStatus]int `json:"by_status"`
	AvgDistanceKm   float64                  `json:"avg_distance_km"`
	TotalDistanceKm float64                  `json:"total_distance_km"`
	AvgDuration     time.Duration            `json:"avg_duration"`
}

// Revenue summarizes the fares of the completed rides.
type Revenue struct {
	Total     model.Money `json:"total"`
	Average   model.Money `json:"average"`
	Max       model.Money `json:"max"`
	Min       model.Money `json:"min"`
	Today     model.Money `json:"today"`
	ThisWeek  model.Money `json:"this_week"`
	ThisMonth model.Money `json:"this_month"`
}

// DriverRank is an entry of the top drivers list.
type DriverRank struct {
	UserID   int         `json:"user_id"`
	Username string      `json:"username"`
	Earnings model.Money `json:"earnings"`
	Rides    int         `json:"rides"`
	Rating   float64     `json:"rating"`
}

// PassengerRank is an entry of the most active passengers list.
type PassengerRank struct {
	UserID   int         `json:"user_id"`
	Username string      `json:"username"`
	Rides    int         `json:"rides"`
	Spent    model.Money `json:"spent"`
}

// Route is an entry of the popular routes list.
type Route struct {
	Route   string      `json:"route"`
	Count   int         `json:"count"`
	AvgFare model.Money `json:"avg_fare"`
}

// Efficiency contains the completion and cancellation rates, in
// percents of all rides, and the average time which drivers took to
// accept a ride.
type Efficiency struct {
	CompletionRate   float64       `json:"completion_rate"`
	CancellationRate float64       `json:"cancellation_rate"`
	AvgResponse      time.Duration `json:"avg_response"`
}

// System is the admin report over the whole system.
type System struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	Users         Users           `json:"users"`
	Rides         Rides           `json:"rides"`
	Revenue       Revenue         `json:"revenue"`
	TopDrivers    []DriverRank    `json:"top_drivers"`
	TopPassengers []PassengerRank `json:"top_passengers"`
	Routes        []Route         `json:"routes"`
	Efficiency    Efficiency      `json:"efficiency"`
}

// NewSystem computes the system report at the now time. Each top-N
// list holds at most topN entries (DefaultTopN if topN is not
// positive).
func NewSystem(
	users []*model.User, rides []*model.Ride, now time.Time, topN int,
) *System {
	if topN <= 0 {
		topN = DefaultTopN
	}
	completed := filter(rides, func(r *model.Ride) bool {
		return r.Status == model.RideStatusCompleted
	})
	return &System{
		GeneratedAt:   now,
		Users:         userStats(users),
		Rides:         rideStats(rides, completed),
		Revenue:       revenue(completed, now),
		TopDrivers:    topDrivers(users, completed, topN),
		TopPassengers: topPassengers(users, completed, topN),
		Routes:        popularRoutes(completed, topN),
		Efficiency:    efficiency(rides, len(completed)),
	}
}

func filter(rides []*model.Ride, keep func(*model.Ride) bool) []*model.Ride {
	var out []*model.Ride
	for _, r := range rides {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func userStats(users []*model.User) Users {
	var s Users
	var ratings float64
	for _, u := range users {
		s.Total++
		if u.IsActive {
			s.Active++
		}
		switch {
		case u.IsPassenger():
			s.Passengers++
		case u.IsDriver():
			s.Drivers++
			if u.Driver.IsAvailable {
				s.AvailableDrivers++
			}
			if len(u.ReceivedRatings) > 0 {
				s.RatedDrivers++
				ratings += u.AverageRating()
			}
		}
	}
	if s.RatedDrivers > 0 {
		s.AvgDriverRating = ratings / float64(s.RatedDrivers)
	}
	return s
}

func rideStats(rides, completed []*model.Ride) Rides {
	s := Rides{
		Total:    len(rides),
		ByStatus: make(map[model.RideStatus]int, len(model.RideStatuses)),
	}
	for _, st := range model.RideStatuses {
		s.ByStatus[st] = 0
	}
	for _, r := range rides {
		s.ByStatus[r.Status]++
	}
	var total time.Duration
	timed := 0
	for _, r := range completed {
		s.TotalDistanceKm += r.DistanceKm
		if r.AcceptedAt != nil && r.CompletedAt != nil {
			total += r.CompletedAt.Sub(*r.AcceptedAt)
			timed++
		}
	}
	if n := len(completed); n > 0 {
		s.AvgDistanceKm = s.TotalDistanceKm / float64(n)
	}
	if timed > 0 {
		s.AvgDuration = total / time.Duration(timed)
	}
	return s
}

func average(total model.Money, n int) model.Money {
	if n == 0 {
		return 0
	}
	return model.Money(math.Round(float64(total) / float64(n)))
}

// periodStarts returns the start of the day, week (Sunday), and month
// which contain now, in the now location.
func periodStarts(now time.Time) (day, week, month time.Time) {
	y, m, d := now.Date()
	loc := now.Location()
	day = time.Date(y, m, d, 0, 0, 0, 0, loc)
	week = day.AddDate(0, 0, -int(day.Weekday()))
	month = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	return
}

func revenue(completed []*model.Ride, now time.Time) Revenue {
	var rv Revenue
	if len(completed) == 0 {
		return rv
	}
	day, week, month := periodStarts(now)
	rv.Min = completed[0].Fare
	for _, r := range completed {
		rv.Total += r.Fare
		rv.Max = max(rv.Max, r.Fare)
		rv.Min = min(rv.Min, r.Fare)
		if r.CompletedAt == nil {
			continue
		}
		at := *r.CompletedAt
		if !at.Before(day) {
			rv.Today += r.Fare
		}
		if !at.Before(week) {
			rv.ThisWeek += r.Fare
		}
		if !at.Before(month) {
			rv.ThisMonth += r.Fare
		}
	}
	rv.Average = average(rv.Total, len(completed))
	return rv
}

func topDrivers(users []*model.User, completed []*model.Ride, n int) []DriverRank {
	rides := make(map[int]int)
	for _, r := range completed {
		if r.DriverID != nil {
			rides[*r.DriverID]++
		}
	}
	ranks := make([]DriverRank, 0)
	for _, u := range users {
		if !u.IsDriver() || rides[u.ID] == 0 {
			continue
		}
		ranks = append(ranks, DriverRank{
			UserID:   u.ID,
			Username: u.Username,
			Earnings: u.Driver.TotalEarnings,
			Rides:    rides[u.ID],
			Rating:   u.AverageRating(),
		})
	}
	slices.SortStableFunc(ranks, func(a, b DriverRank) int {
		return cmp.Or(
			cmp.Compare(b.Earnings, a.Earnings),
			cmp.Compare(a.UserID, b.UserID),
		)
	})
	return ranks[:min(n, len(ranks))]
}

func topPassengers(users []*model.User, completed []*model.Ride, n int) []PassengerRank {
	type acc struct {
		rides int
		spent model.Money
	}
	byID := make(map[int]acc)
	for _, r := range completed {
		a := byID[r.PassengerID]
		a.rides++
		a.spent += r.Fare
		byID[r.PassengerID] = a
	}
	ranks := make([]PassengerRank, 0)
	for _, u := range users {
		a := byID[u.ID]
		if !u.IsPassenger() || a.rides == 0 {
			continue
		}
		ranks = append(ranks, PassengerRank{
			UserID:   u.ID,
			Username: u.Username,
			Rides:    a.rides,
			Spent:    a.spent,
		})
	}
	slices.SortStableFunc(ranks, func(a, b PassengerRank) int {
		return cmp.Or(
			cmp.Compare(b.Rides, a.Rides),
			cmp.Compare(b.Spent, a.Spent),
			cmp.Compare(a.UserID, b.UserID),
		)
	})
	return ranks[:min(n, len(ranks))]
}

func popularRoutes(completed []*model.Ride, n int) []Route {
	type acc struct {
		count int
		fares model.Money
		first int // index of the first ride on this route
	}
	byRoute := make(map[string]*acc)
	for i, r := range completed {
		a, ok := byRoute[r.Route()]
		if !ok {
			a = &acc{first: i}
			byRoute[r.Route()] = a
		}
		a.count++
		a.fares += r.Fare
	}
	routes := make([]Route, 0, len(byRoute))
	for name, a := range byRoute {
		routes = append(routes, Route{
			Route:   name,
			Count:   a.count,
			AvgFare: average(a.fares, a.count),
		})
	}
	slices.SortFunc(routes, func(a, b Route) int {
		return cmp.Or(
			cmp.Compare(b.Count, a.Count),
			cmp.Compare(byRoute[a.Route].first, byRoute[b.Route].first),
		)
	})
	return routes[:min(n, len(routes))]
}

func efficiency(rides []*model.Ride, completed int) Efficiency {
	var e Efficiency
	if len(rides) == 0 {
		return e
	}
	cancelled := 0
	var response time.Duration
	responded := 0
	for _, r := range rides {
		if r.Status == model.RideStatusCancelled {
			cancelled++
		}
		if r.AcceptedAt != nil {
			response += r.AcceptedAt.Sub(r.RequestedAt)
			responded++
		}
	}
	total := float64(len(rides))
	e.CompletionRate = float64(completed) * 100 / total
	e.CancellationRate = float64(cancelled) * 100 / total
	if responded > 0 {
		e.AvgResponse = response / time.Duration(responded)
	}
	return e
}
