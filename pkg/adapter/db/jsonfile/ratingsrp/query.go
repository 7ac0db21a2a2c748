// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ratingsrp

import (
	"context"
	"fmt"
	"time"

	"github.com/momeni/ryde/pkg/adapter/db/jsonfile"
	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/model"
)

// File is the name of the ratings snapshot file.
const File = "ratings.json"

// Record is the persisted form of a rating. It is also embedded in
// the user records (as their received ratings).
type Record struct {
	ID         int       `json:"Id"`
	FromUserID int       `json:"FromUserId"`
	ToUserID   int       `json:"ToUserId"`
	RideID     *int      `json:"RideId,omitempty"`
	Stars      int       `json:"Stars"`
	Comment    string    `json:"Comment"`
	CreatedAt  time.Time `json:"CreatedAt"`
}

// Check rejects records which their stars are out of range.
func (r *Record) Check() error {
	if err := model.ValidateStars(r.Stars); err != nil {
		return cerr.Validation(fmt.Errorf("rating #%d: %w", r.ID, err))
	}
	return nil
}

var ratings = &jsonfile.Collection[Record]{
	File:  File,
	ID:    func(r *Record) *int { return &r.ID },
	Check: (*Record).Check,
}

// Model converts r to a model.Rating.
func (r *Record) Model() model.Rating {
	m := model.Rating{
		ID:         r.ID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Stars:      r.Stars,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
	if r.RideID != nil {
		id := *r.RideID
		m.RideID = &id
	}
	return m
}

// FromModel converts m to its persisted form.
func FromModel(m *model.Rating) Record {
	r := Record{
		ID:         m.ID,
		FromUserID: m.FromUserID,
		ToUserID:   m.ToUserID,
		Stars:      m.Stars,
		Comment:    m.Comment,
		CreatedAt:  m.CreatedAt,
	}
	if m.RideID != nil {
		id := *m.RideID
		r.RideID = &id
	}
	return r
}

func List[Q jsonfile.Queryer](ctx context.Context, q Q) ([]*model.Rating, error) {
	rs, err := jsonfile.LoadAll(ctx, q, ratings)
	if err != nil {
		return nil, err
	}
	ms := make([]*model.Rating, 0, len(rs))
	for i := range rs {
		m := rs[i].Model()
		ms = append(ms, &m)
	}
	return ms, nil
}

func ByID[Q jsonfile.Queryer](ctx context.Context, q Q, id int) (*model.Rating, error) {
	r, err := jsonfile.FindByID(ctx, q, ratings, id)
	if err != nil {
		return nil, err
	}
	m := r.Model()
	return &m, nil
}

func ByRecipient[Q jsonfile.Queryer](ctx context.Context, q Q, userID int) ([]*model.Rating, error) {
	all, err := List(ctx, q)
	if err != nil {
		return nil, err
	}
	ms := make([]*model.Rating, 0)
	for _, m := range all {
		if m.ToUserID == userID {
			ms = append(ms, m)
		}
	}
	return ms, nil
}

func Add(ctx context.Context, tx *jsonfile.Tx, m *model.Rating) (*model.Rating, error) {
	if err := model.ValidateStars(m.Stars); err != nil {
		return nil, cerr.Validation(err)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r, err := jsonfile.AddOne(ctx, tx, ratings, FromModel(m))
	if err != nil {
		return nil, err
	}
	added := r.Model()
	return &added, nil
}

func SaveAll(ctx context.Context, tx *jsonfile.Tx, ms []*model.Rating) error {
	rs := make([]Record, 0, len(ms))
	for _, m := range ms {
		rs = append(rs, FromModel(m))
	}
	return jsonfile.SaveAll(ctx, tx, ratings, rs)
}
