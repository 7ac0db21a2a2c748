// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "fmt"

// Coordinate represents a geographical location with a latitude and
// longitude in degrees. The zero Coordinate is a valid point (in the
// Gulf of Guinea) and is used for drivers who never reported their
// location, so it is practically never within a matching radius.
type Coordinate struct {
	Lat, Lon float64 // latitude and longitude of the geo-location
}

// String formats c with five decimal digits, which is about one meter
// of precision and is stable enough to be used as a hashing key.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon)
}

// Location is a named point of the static locations table.
type Location struct {
	Name       string
	Coordinate Coordinate
}
