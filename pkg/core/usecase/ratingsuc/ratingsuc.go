// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ratingsuc contains the ratings UseCase. Users rate each other
// after their shared rides and the admin reviews the drivers whose
// average rating falls below a threshold.
package ratingsuc

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/log"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
)

// Default flagging settings: drivers with an average below 3.0 stars
// over at least 5 ratings are flagged.
const (
	DefaultFlagThreshold  = 3.0
	DefaultFlagMinRatings = 5
)

// UseCase represents a ratings use case.
type UseCase struct {
	pool      repo.Pool
	usersrp   repo.Users
	ridesrp   repo.Rides
	ratingsrp repo.Ratings

	threshold  float64
	minRatings int
	now        func() time.Time
}

// New instantiates a ratings use case.
func New(
	p repo.Pool, u repo.Users, r repo.Rides, rt repo.Ratings,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, usersrp: u, ridesrp: r, ratingsrp: rt}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.threshold == 0 {
		uc.threshold = DefaultFlagThreshold
	}
	if uc.minRatings == 0 {
		uc.minRatings = DefaultFlagMinRatings
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}

// Option is a functional option for the ratings use case.
type Option func(uc *UseCase) error

// WithFlagging option configures which drivers are flagged, i.e., the
// ones with an average below threshold over at least minRatings.
func WithFlagging(threshold float64, minRatings int) Option {
	return func(uc *UseCase) error {
		switch {
		case threshold <= model.MinStars || threshold > model.MaxStars:
			return fmt.Errorf("threshold (%g) is out of range", threshold)
		case minRatings < 1:
			return fmt.Errorf("min ratings (%d) is not positive", minRatings)
		}
		uc.threshold, uc.minRatings = threshold, minRatings
		return nil
	}
}

// WithClock option replaces time.Now for the ratings creation time.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock must be non-nil")
		}
		uc.now = now
		return nil
	}
}

// Input describes a new rating.
type Input struct {
	FromUserID int
	ToUserID   int
	RideID     *int // optional, the ride which both users shared
	Stars      int
	Comment    string
}

// Rate records a rating from one user to another one. Stars must be
// in the [1, 5] range and users may not rate themselves. If a ride is
// given, it must be a completed ride of both users and each user may
// rate it once. The rating is appended to the ratings collection and
// to the received ratings of the rated user.
func (ratings *UseCase) Rate(ctx context.Context, in Input) (rt *model.Rating, err error) {
	if err = model.ValidateStars(in.Stars); err != nil {
		return nil, cerr.Validation(err)
	}
	if in.FromUserID == in.ToUserID {
		return nil, cerr.Validation(errors.New("users may not rate themselves"))
	}
	var to *model.User
	err = ratings.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			users := ratings.usersrp.Tx(tx)
			if _, err := users.ByID(ctx, in.FromUserID); err != nil {
				return err
			}
			if to, err = users.ByID(ctx, in.ToUserID); err != nil {
				return err
			}
			rq := ratings.ratingsrp.Tx(tx)
			if in.RideID != nil {
				err := ratings.checkRide(ctx, ratings.ridesrp.Tx(tx), rq, in)
				if err != nil {
					return err
				}
			}
			rt, err = rq.Add(ctx, &model.Rating{
				FromUserID: in.FromUserID,
				ToUserID:   in.ToUserID,
				RideID:     in.RideID,
				Stars:      in.Stars,
				Comment:    in.Comment,
				CreatedAt:  ratings.now(),
			})
			if err != nil {
				return err
			}
			to.ReceivedRatings = append(to.ReceivedRatings, *rt)
			return users.Update(ctx, to)
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "user is rated",
		log.UserID(in.ToUserID), slog.Int("from", in.FromUserID),
		slog.Int("stars", in.Stars),
	)
	if to.IsDriver() && ratings.flagged(to) {
		log.Warn(
			ctx, "driver is flagged for low ratings",
			log.UserID(to.ID),
			slog.Float64("average", to.AverageRating()),
		)
	}
	return rt, nil
}

func (ratings *UseCase) checkRide(
	ctx context.Context,
	rides repo.RidesTxQueryer, rq repo.RatingsTxQueryer,
	in Input,
) error {
	r, err := rides.ByID(ctx, *in.RideID)
	if err != nil {
		return err
	}
	if r.Status != model.RideStatusCompleted ||
		!r.Involves(in.FromUserID) || !r.Involves(in.ToUserID) {
		return cerr.Conflict(fmt.Errorf(
			"ride #%d is not a completed ride of users #%d and #%d",
			r.ID, in.FromUserID, in.ToUserID,
		))
	}
	given, err := rq.ByRecipient(ctx, in.ToUserID)
	if err != nil {
		return err
	}
	for _, g := range given {
		if g.FromUserID == in.FromUserID && g.RideID != nil &&
			*g.RideID == r.ID {
			return cerr.Conflict(fmt.Errorf(
				"ride #%d is already rated by user #%d",
				r.ID, in.FromUserID,
			))
		}
	}
	return nil
}

func (ratings *UseCase) flagged(d *model.User) bool {
	return len(d.ReceivedRatings) >= ratings.minRatings &&
		d.AverageRating() < ratings.threshold
}

// Received returns the ratings which the uid user received, newest
// first, and their average stars.
func (ratings *UseCase) Received(
	ctx context.Context, uid int,
) (rs []model.Rating, avg float64, err error) {
	var u *model.User
	err = ratings.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		u, err = ratings.usersrp.Conn(c).ByID(ctx, uid)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	rs = slices.Clone(u.ReceivedRatings)
	slices.SortStableFunc(rs, func(a, b model.Rating) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return rs, u.AverageRating(), nil
}

// Flagged is a driver whose ratings are below the flagging threshold.
type Flagged struct {
	Driver  *model.User
	Average float64
	Count   int
}

// FlagLowRated returns the flagged drivers, lowest average first.
func (ratings *UseCase) FlagLowRated(ctx context.Context) ([]Flagged, error) {
	var us []*model.User
	err := ratings.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) (err error) {
		us, err = ratings.usersrp.Conn(c).List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	fs := make([]Flagged, 0)
	for _, u := range us {
		if u.IsDriver() && ratings.flagged(u) {
			fs = append(fs, Flagged{
				Driver:  u,
				Average: u.AverageRating(),
				Count:   len(u.ReceivedRatings),
			})
		}
	}
	slices.SortStableFunc(fs, func(a, b Flagged) int {
		return cmp.Or(
			cmp.Compare(a.Average, b.Average),
			cmp.Compare(a.Driver.ID, b.Driver.ID),
		)
	})
	return fs, nil
}

// Threshold returns the flagging threshold and minimum ratings count.
func (ratings *UseCase) Threshold() (float64, int) {
	return ratings.threshold, ratings.minRatings
}
