// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package geo resolves location names to coordinates and computes the
// distances which the rides use case needs for fares and matching.
// All distances are great-circle distances in kilometers. Trips which
// involve an unknown location name use a Fallback distance instead.
package geo

import (
	"slices"
	"strings"

	"github.com/momeni/ryde/pkg/core/model"
)

// MaxSuggestions is the maximum number of names which Suggest returns.
const MaxSuggestions = 5

// Known returns the built-in Johannesburg area locations, in their
// presentation order.
func Known() []model.Location {
	return []model.Location{
		{Name: "Downtown", Coordinate: model.Coordinate{Lat: -26.2041, Lon: 28.0473}},
		{Name: "Sandton", Coordinate: model.Coordinate{Lat: -26.1076, Lon: 28.0567}},
		{Name: "Rosebank", Coordinate: model.Coordinate{Lat: -26.1483, Lon: 28.0436}},
		{Name: "Midrand", Coordinate: model.Coordinate{Lat: -25.9853, Lon: 28.1294}},
		{Name: "Pretoria", Coordinate: model.Coordinate{Lat: -25.7479, Lon: 28.2293}},
		{Name: "Airport", Coordinate: model.Coordinate{Lat: -26.1392, Lon: 28.2460}},
		{Name: "Centurion", Coordinate: model.Coordinate{Lat: -25.8601, Lon: 28.1881}},
		{Name: "Fourways", Coordinate: model.Coordinate{Lat: -26.0167, Lon: 28.0064}},
		{Name: "Randburg", Coordinate: model.Coordinate{Lat: -26.0941, Lon: 27.9926}},
		{Name: "Bedfordview", Coordinate: model.Coordinate{Lat: -26.1786, Lon: 28.1361}},
		{Name: "Germiston", Coordinate: model.Coordinate{Lat: -26.2309, Lon: 28.1772}},
		{Name: "Kempton Park", Coordinate: model.Coordinate{Lat: -26.1006, Lon: 28.2294}},
	}
}

// Gazetteer is an immutable table of named locations. Names are
// matched case-insensitively, ignoring the surrounding spaces.
type Gazetteer struct {
	locs  []model.Location
	byKey map[string]int
}

// NewGazetteer returns a Gazetteer holding the Known locations and the
// extra ones. An extra location replaces a known location with the
// same name (so its coordinates may be corrected by configuration).
func NewGazetteer(extra ...model.Location) *Gazetteer {
	g := &Gazetteer{byKey: make(map[string]int)}
	for _, l := range slices.Concat(Known(), extra) {
		l.Name = strings.TrimSpace(l.Name)
		if l.Name == "" {
			continue
		}
		k := key(l.Name)
		if i, ok := g.byKey[k]; ok {
			g.locs[i] = l
			continue
		}
		g.byKey[k] = len(g.locs)
		g.locs = append(g.locs, l)
	}
	return g
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup returns the location which is named name. The returned
// location carries the canonical spelling of its name.
func (g *Gazetteer) Lookup(name string) (model.Location, bool) {
	i, ok := g.byKey[key(name)]
	if !ok {
		return model.Location{}, false
	}
	return g.locs[i], true
}

// Locations returns a copy of all locations, in presentation order.
func (g *Gazetteer) Locations() []model.Location {
	return slices.Clone(g.locs)
}

// Suggest returns up to MaxSuggestions location names which start with
// the prefix string. An empty prefix suggests the first locations.
func (g *Gazetteer) Suggest(prefix string) []string {
	p := key(prefix)
	var names []string
	for _, l := range g.locs {
		if len(names) == MaxSuggestions {
			break
		}
		if strings.HasPrefix(key(l.Name), p) {
			names = append(names, l.Name)
		}
	}
	return names
}
