// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package console

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/report"
	"github.com/momeni/ryde/pkg/core/usecase/ratingsuc"
	"github.com/momeni/ryde/pkg/core/usecase/ridesuc"
)

const timeLayout = "2006-01-02 15:04"

// table writes tab separated rows as aligned columns.
type table struct {
	tw *tabwriter.Writer
}

func (c *Console) table(headers ...string) *table {
	t := &table{tw: tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)}
	t.row(toAny(headers)...)
	dashes := make([]any, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	t.row(dashes...)
	return t
}

func toAny(ss []string) []any {
	as := make([]any, len(ss))
	for i, s := range ss {
		as[i] = s
	}
	return as
}

func (t *table) row(cells ...any) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(t.tw, "\t")
		}
		fmt.Fprint(t.tw, cell)
	}
	fmt.Fprintln(t.tw)
}

func (t *table) flush() {
	_ = t.tw.Flush()
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(timeLayout)
}

func optionalID(id *int) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("#%d", *id)
}

func (c *Console) printRides(rs []*model.Ride) {
	t := c.table(
		"ID", "Route", "Km", "Fare", "Status", "Driver", "Requested",
		"Completed",
	)
	for _, r := range rs {
		t.row(
			fmt.Sprintf("#%d", r.ID), r.Route(),
			fmt.Sprintf("%.1f", r.DistanceKm), r.Fare, r.Status,
			optionalID(r.DriverID), r.RequestedAt.Format(timeLayout),
			optionalTime(r.CompletedAt),
		)
	}
	t.flush()
}

func (c *Console) printOpenRequests(reqs []ridesuc.OpenRequest) {
	t := c.table("ID", "Route", "Trip km", "Fare", "Pickup km", "Matched")
	for _, req := range reqs {
		pickupKm := "?"
		if req.Known {
			pickupKm = fmt.Sprintf("%.1f", req.DistanceKm)
		}
		matched := ""
		if req.Suggested {
			matched = "yes"
		}
		t.row(
			fmt.Sprintf("#%d", req.Ride.ID), req.Ride.Route(),
			fmt.Sprintf("%.1f", req.Ride.DistanceKm), req.Ride.Fare,
			pickupKm, matched,
		)
	}
	t.flush()
}

func (c *Console) printRatings(rs []model.Rating) {
	t := c.table("Stars", "From", "Ride", "Comment", "Date")
	for _, r := range rs {
		t.row(
			strings.Repeat("*", r.Stars), fmt.Sprintf("#%d", r.FromUserID),
			optionalID(r.RideID), r.Comment, r.CreatedAt.Format(timeLayout),
		)
	}
	t.flush()
}

func (c *Console) printFlagged(fs []ratingsuc.Flagged) {
	t := c.table("ID", "Driver", "Vehicle", "Average", "Ratings")
	for _, f := range fs {
		t.row(
			fmt.Sprintf("#%d", f.Driver.ID), f.Driver.Username,
			f.Driver.Driver.VehicleInfo, fmt.Sprintf("%.2f", f.Average),
			f.Count,
		)
	}
	t.flush()
}

func (c *Console) printUsers(us []*model.User) {
	t := c.table("ID", "Username", "Type", "Email", "Phone", "Details")
	for _, u := range us {
		details := ""
		switch {
		case u.IsPassenger():
			details = "wallet " + u.Passenger.WalletBalance.String()
		case u.IsDriver():
			details = fmt.Sprintf(
				"%s, available=%t, at %s",
				u.Driver.VehicleInfo, u.Driver.IsAvailable,
				u.Driver.LocationName,
			)
		}
		t.row(
			fmt.Sprintf("#%d", u.ID), u.Username, u.Type, u.Email,
			u.Phone, details,
		)
	}
	t.flush()
}

func (c *Console) printSystem(rep *report.System) {
	c.header("System Report")
	fmt.Fprintf(c.out, "Generated at %s\n", rep.GeneratedAt.Format(timeLayout))

	u := rep.Users
	fmt.Fprintf(c.out, "\nUsers: %d (%d passengers, %d drivers, %d available)\n",
		u.Total, u.Passengers, u.Drivers, u.AvailableDrivers)
	fmt.Fprintf(c.out, "Average driver rating: %.2f (%d rated drivers)\n",
		u.AvgDriverRating, u.RatedDrivers)

	r := rep.Rides
	fmt.Fprintf(c.out, "\nRides: %d\n", r.Total)
	t := c.table("Status", "Count")
	for _, s := range model.RideStatuses {
		t.row(s, r.ByStatus[s])
	}
	t.flush()
	fmt.Fprintf(c.out,
		"Distance: %.1f km in total, %.1f km on average; average duration %s\n",
		r.TotalDistanceKm, r.AvgDistanceKm, r.AvgDuration.Round(time.Second))

	v := rep.Revenue
	fmt.Fprintf(c.out, "\nRevenue: %s (average %s, max %s, min %s)\n",
		v.Total, v.Average, v.Max, v.Min)
	fmt.Fprintf(c.out, "Today %s, this week %s, this month %s\n",
		v.Today, v.ThisWeek, v.ThisMonth)

	fmt.Fprintln(c.out, "\nTop drivers")
	t = c.table("Driver", "Earnings", "Rides", "Rating")
	for _, d := range rep.TopDrivers {
		t.row(d.Username, d.Earnings, d.Rides, fmt.Sprintf("%.1f", d.Rating))
	}
	t.flush()

	fmt.Fprintln(c.out, "\nTop passengers")
	t = c.table("Passenger", "Rides", "Spent")
	for _, p := range rep.TopPassengers {
		t.row(p.Username, p.Rides, p.Spent)
	}
	t.flush()

	fmt.Fprintln(c.out, "\nPopular routes")
	t = c.table("Route", "Rides", "Average fare")
	for _, rt := range rep.Routes {
		t.row(rt.Route, rt.Count, rt.AvgFare)
	}
	t.flush()

	e := rep.Efficiency
	fmt.Fprintf(c.out,
		"\nCompletion rate %.1f%%, cancellation rate %.1f%%, average response %s\n",
		e.CompletionRate, e.CancellationRate, e.AvgResponse.Round(time.Second))
}

func (c *Console) printDriverReport(rep *report.Driver) {
	c.header("Driver Report - " + rep.Username)
	fmt.Fprintf(c.out, "License %s, vehicle %s, available=%t\n",
		rep.LicenseNumber, rep.VehicleInfo, rep.IsAvailable)
	fmt.Fprintf(c.out, "Rating %.2f of %d ratings\n", rep.Rating, rep.Ratings)
	fmt.Fprintf(c.out, "Earnings %s from %d rides, %s per ride\n",
		rep.Earnings, rep.CompletedRides, rep.AvgPerRide)
	if len(rep.Recent) > 0 {
		c.printRides(rep.Recent)
	}
}

func (c *Console) printPassengerReport(rep *report.Passenger) {
	c.header("Passenger Report - " + rep.Username)
	fmt.Fprintf(c.out, "Email %s, phone %s, pays by %s\n",
		rep.Email, rep.Phone, rep.PaymentMethod)
	fmt.Fprintf(c.out, "Balance %s, %d rides, spent %s (%s per ride)\n",
		rep.Balance, rep.Rides, rep.TotalSpent, rep.AvgPerRide)
	if len(rep.Recent) > 0 {
		c.printRides(rep.Recent)
	}
}
