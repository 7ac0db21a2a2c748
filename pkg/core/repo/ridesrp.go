// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/ryde/pkg/core/model"
)

type RidesConnQueryer interface {
	RidesQueryer
}

type RidesTxQueryer interface {
	RidesQueryer

	// Add assigns an ID (if r.ID is zero) to r and appends it to the
	// rides collection. The Version of the added ride is set to 1.
	Add(ctx context.Context, r *model.Ride) (*model.Ride, error)

	// Update replaces the ride which has the same ID as r, only if
	// the persisted ride has the same Version as r. Otherwise, a
	// stale state error is returned. On success, r.Version is
	// incremented to match the persisted version.
	Update(ctx context.Context, r *model.Ride) error

	// SaveAll replaces the whole rides collection.
	SaveAll(ctx context.Context, rides []*model.Ride) error
}

// RidesQueryer contains the read operations of the rides collection.
type RidesQueryer interface {
	List(ctx context.Context) ([]*model.Ride, error)
	ByID(ctx context.Context, id int) (*model.Ride, error)
}

type Rides interface {
	Conn(Conn) RidesConnQueryer
	Tx(Tx) RidesTxQueryer
}
