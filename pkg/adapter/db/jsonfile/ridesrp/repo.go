// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ridesrp implements the repo.Rides interface over the
// rides.json snapshot file.
package ridesrp

import (
	"context"

	"github.com/momeni/ryde/pkg/adapter/db/jsonfile"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
)

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*jsonfile.Conn
}

func (rides *Repo) Conn(c repo.Conn) repo.RidesConnQueryer {
	cc := c.(*jsonfile.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) List(ctx context.Context) ([]*model.Ride, error) {
	return List(ctx, cq.Conn)
}

func (cq connQueryer) ByID(ctx context.Context, id int) (*model.Ride, error) {
	return ByID(ctx, cq.Conn, id)
}

type txQueryer struct {
	*jsonfile.Tx
}

func (rides *Repo) Tx(tx repo.Tx) repo.RidesTxQueryer {
	tt := tx.(*jsonfile.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) List(ctx context.Context) ([]*model.Ride, error) {
	return List(ctx, tq.Tx)
}

func (tq txQueryer) ByID(ctx context.Context, id int) (*model.Ride, error) {
	return ByID(ctx, tq.Tx, id)
}

func (tq txQueryer) Add(ctx context.Context, r *model.Ride) (*model.Ride, error) {
	return Add(ctx, tq.Tx, r)
}

func (tq txQueryer) Update(ctx context.Context, r *model.Ride) error {
	return Update(ctx, tq.Tx, r)
}

func (tq txQueryer) SaveAll(ctx context.Context, rs []*model.Ride) error {
	return SaveAll(ctx, tq.Tx, rs)
}
