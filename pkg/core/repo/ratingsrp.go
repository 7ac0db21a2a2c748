// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/ryde/pkg/core/model"
)

type RatingsConnQueryer interface {
	RatingsQueryer
}

type RatingsTxQueryer interface {
	RatingsQueryer
	Add(ctx context.Context, r *model.Rating) (*model.Rating, error)
	SaveAll(ctx context.Context, ratings []*model.Rating) error
}

type RatingsQueryer interface {
	List(ctx context.Context) ([]*model.Rating, error)
	ByID(ctx context.Context, id int) (*model.Rating, error)
	ByRecipient(ctx context.Context, userID int) ([]*model.Rating, error)
}

type Ratings interface {
	Conn(Conn) RatingsConnQueryer
	Tx(Tx) RatingsTxQueryer
}
