// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ratingsrp implements the repo.Ratings interface over the
// ratings.json snapshot file.
package ratingsrp

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

func (ratings *Repo) Conn(c repo.Conn) repo.RatingsConnQueryer {
	return connQueryer{Conn: c.(*jsonfile.Conn)}
}

func (cq connQueryer) List(ctx context.Context) ([]*model.Rating, error) {
	return List(ctx, cq.Conn)
}

func (cq connQueryer) ByID(ctx context.Context, id int) (*model.Rating, error) {
	return ByID(ctx, cq.Conn, id)
}

func (cq connQueryer) ByRecipient(ctx context.Context, userID int) ([]*model.Rating, error) {
	return ByRecipient(ctx, cq.Conn, userID)
}

type txQueryer struct {
	*jsonfile.Tx
}

func (ratings *Repo) Tx(tx repo.Tx) repo.RatingsTxQueryer {
	return txQueryer{Tx: tx.(*jsonfile.Tx)}
}

func (tq txQueryer) List(ctx context.Context) ([]*model.Rating, error) {
	return List(ctx, tq.Tx)
}

func (tq txQueryer) ByID(ctx context.Context, id int) (*model.Rating, error) {
	return ByID(ctx, tq.Tx, id)
}

func (tq txQueryer) ByRecipient(ctx context.Context, userID int) ([]*model.Rating, error) {
	return ByRecipient(ctx, tq.Tx, userID)
}

func (tq txQueryer) Add(ctx context.Context, r *model.Rating) (*model.Rating, error) {
	return Add(ctx, tq.Tx, r)
}

func (tq txQueryer) SaveAll(ctx context.Context, rs []*model.Rating) error {
	return SaveAll(ctx, tq.Tx, rs)
}
