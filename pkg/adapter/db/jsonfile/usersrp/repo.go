// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package usersrp implements the repo.Users interface over the
// users.json snapshot file.
package usersrp

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

func (users *Repo) Conn(c repo.Conn) repo.UsersConnQueryer {
	cc := c.(*jsonfile.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) List(ctx context.Context) ([]*model.User, error) {
	return List(ctx, cq.Conn)
}

func (cq connQueryer) ByID(ctx context.Context, id int) (*model.User, error) {
	return ByID(ctx, cq.Conn, id)
}

func (cq connQueryer) ByUsername(ctx context.Context, username string) (*model.User, error) {
	return ByUsername(ctx, cq.Conn, username)
}

type txQueryer struct {
	*jsonfile.Tx
}

func (users *Repo) Tx(tx repo.Tx) repo.UsersTxQueryer {
	tt := tx.(*jsonfile.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) List(ctx context.Context) ([]*model.User, error) {
	return List(ctx, tq.Tx)
}

func (tq txQueryer) ByID(ctx context.Context, id int) (*model.User, error) {
	return ByID(ctx, tq.Tx, id)
}

func (tq txQueryer) ByUsername(ctx context.Context, username string) (*model.User, error) {
	return ByUsername(ctx, tq.Tx, username)
}

func (tq txQueryer) Add(ctx context.Context, u *model.User) (*model.User, error) {
	return Add(ctx, tq.Tx, u)
}

func (tq txQueryer) Update(ctx context.Context, u *model.User) error {
	return Update(ctx, tq.Tx, u)
}

func (tq txQueryer) SaveAll(ctx context.Context, us []*model.User) error {
	return SaveAll(ctx, tq.Tx, us)
}
