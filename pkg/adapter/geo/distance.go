// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package geo

import (
	"hash/fnv"
	"math"
	"strings"

	"github.com/momeni/ryde/pkg/core/model"
)

// EarthRadiusKm is the mean radius of the Earth.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance between a and b in
// kilometers.
func Haversine(a, b model.Coordinate) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(b.Lat - a.Lat)
	dLon := rad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Fallback estimates the distance of a trip which at least one of its
// endpoints is not a known location.
type Fallback interface {
	Distance(from, to string) float64
}

// HashFallback is a deterministic Fallback which maps the FNV-1a hash
// of the (case-folded) endpoint names into the [Min, Max) range, so a
// repeated quote for the same trip yields the same fare.
type HashFallback struct {
	Min, Max float64 // kilometers
}

// DefaultFallback maps unknown trips into 5 to 25 kilometers.
var DefaultFallback = HashFallback{Min: 5, Max: 25}

// Distance implements the Fallback interface. The result is truncated
// to one decimal digit.
func (hf HashFallback) Distance(from, to string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key(from)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(key(to)))
	frac := float64(h.Sum64()%10000) / 10000
	d := hf.Min + frac*(hf.Max-hf.Min)
	return math.Floor(d*10) / 10
}

// Calculator resolves location names using a Gazetteer and computes
// trip distances by the Haversine formula, resorting to its Fallback
// for unknown names.
type Calculator struct {
	gazetteer *Gazetteer
	fallback  Fallback
}

// NewCalculator returns a Calculator. A nil fallback is replaced by
// the DefaultFallback.
func NewCalculator(g *Gazetteer, fb Fallback) *Calculator {
	if fb == nil {
		fb = DefaultFallback
	}
	return &Calculator{gazetteer: g, fallback: fb}
}

// Locate resolves the name location.
func (c *Calculator) Locate(name string) (model.Location, bool) {
	return c.gazetteer.Lookup(name)
}

// Between returns the great-circle distance between a and b.
func (c *Calculator) Between(a, b model.Coordinate) float64 {
	return Haversine(a, b)
}

// Trip returns the distance from the from location to the to location
// in kilometers, rounded to one decimal digit.
func (c *Calculator) Trip(from, to string) float64 {
	a, okA := c.gazetteer.Lookup(from)
	b, okB := c.gazetteer.Lookup(to)
	if !okA || !okB {
		return c.fallback.Distance(from, to)
	}
	return math.Round(Haversine(a.Coordinate, b.Coordinate)*10) / 10
}

// Suggest returns location names which start with prefix.
func (c *Calculator) Suggest(prefix string) []string {
	return c.gazetteer.Suggest(strings.TrimSpace(prefix))
}

// Locations returns all known locations.
func (c *Calculator) Locations() []model.Location {
	return c.gazetteer.Locations()
}
