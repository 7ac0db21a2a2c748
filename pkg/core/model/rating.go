// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"time"
)

// Inclusive bounds of the Rating.Stars field.
const (
	MinStars = 1
	MaxStars = 5
)

// Rating is a feedback which one user gives to another one. Ratings
// are immutable after creation.
type Rating struct {
	ID         int
	FromUserID int
	ToUserID   int
	RideID     *int // the rated ride, if any
	Stars      int
	Comment    string
	CreatedAt  time.Time
}

// StarsError indicates that a number of stars is out of range.
type StarsError int

// Error implements the error interface.
func (e StarsError) Error() string {
	return fmt.Sprintf(
		"stars (%d) must be between %d and %d", int(e), MinStars, MaxStars,
	)
}

// ValidateStars returns a StarsError if stars is out of range.
func ValidateStars(stars int) error {
	if stars < MinStars || stars > MaxStars {
		return StarsError(stars)
	}
	return nil
}
