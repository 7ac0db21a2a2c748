// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/ryde/pkg/core/model"
)

type UsersConnQueryer interface {
	UsersQueryer
}

type UsersTxQueryer interface {
	UsersQueryer

	// Add assigns an ID (if u.ID is zero) and a creation time to u
	// and appends it to the users collection. Duplicate IDs or
	// usernames are rejected with a conflict error.
	Add(ctx context.Context, u *model.User) (*model.User, error)

	// Update replaces the user which has the same ID as u.
	Update(ctx context.Context, u *model.User) error

	// SaveAll replaces the whole users collection.
	SaveAll(ctx context.Context, users []*model.User) error
}

// UsersQueryer contains the read operations of the users collection.
// Returned users are copies and may be mutated by the caller.
type UsersQueryer interface {
	List(ctx context.Context) ([]*model.User, error)
	ByID(ctx context.Context, id int) (*model.User, error)
	ByUsername(ctx context.Context, username string) (*model.User, error)
}

type Users interface {
	Conn(Conn) UsersConnQueryer
	Tx(Tx) UsersTxQueryer
}
