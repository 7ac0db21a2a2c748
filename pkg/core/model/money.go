// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"math"
	"strconv"
)

// Money is a currency amount kept as an integral number of cents, so
// wallet debits and earnings credits never accumulate rounding errors.
// It is (de)serialized as a decimal number with two fraction digits.
type Money int64

// NewMoney converts a decimal amount (e.g., 12.5) to Money, rounding
// it to the nearest cent.
func NewMoney(amount float64) Money {
	return Money(math.Round(amount * 100))
}

// Float returns m as a decimal amount.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// String formats m like "R12.50" using the rand sign.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign, v = "-", -v
	}
	return fmt.Sprintf("%sR%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes m as a JSON number with two fraction digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Float(), 'f', 2, 64)), nil
}

// UnmarshalJSON decodes a JSON number (or null, leaving m unchanged)
// into m, rounding it to the nearest cent.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parsing money %q: %w", s, err)
	}
	*m = NewMoney(f)
	return nil
}

// FareSchedule computes ride fares as a base fare plus a per-kilometer
// rate. Fares are computed once, when a ride is requested.
type FareSchedule struct {
	Base  Money // charged for every ride
	PerKm Money // charged for each kilometer of the trip
}

// DefaultFareSchedule is 5.00 base fare plus 2.50 per kilometer.
var DefaultFareSchedule = FareSchedule{Base: 500, PerKm: 250}

// Fare returns the fare of a trip with the given distance, rounded to
// the nearest cent. Negative distances are treated as zero.
func (fs FareSchedule) Fare(distanceKm float64) Money {
	if distanceKm < 0 {
		distanceKm = 0
	}
	return fs.Base + Money(math.Round(distanceKm*float64(fs.PerKm)))
}
