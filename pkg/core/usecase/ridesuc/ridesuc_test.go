// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ridesuc_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/momeni/ryde/pkg/adapter/db/jsonfile"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/ridesrp"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/usersrp"
	"github.com/momeni/ryde/pkg/adapter/geo"
	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/repo"
	"github.com/momeni/ryde/pkg/core/usecase/ridesuc"
	"github.com/stretchr/testify/suite"
)

// fakeGeo knows the built-in locations but reports a fixed distance
// for all trips, so fares are predictable.
type fakeGeo struct {
	*geo.Calculator
	tripKm float64
}

func (fg fakeGeo) Trip(from, to string) float64 {
	return fg.tripKm
}

type RidesUseCaseTestSuite struct {
	suite.Suite

	Ctx   context.Context
	Pool  *jsonfile.Pool
	Users *usersrp.Repo
	Rides *ridesrp.Repo
	UC    *ridesuc.UseCase

	now time.Time
}

func TestRidesUseCaseTestSuite(t *testing.T) {
	suite.Run(t, &RidesUseCaseTestSuite{Ctx: context.Background()})
}

func (s *RidesUseCaseTestSuite) SetupTest() {
	p, err := jsonfile.NewPool(s.T().TempDir())
	s.Require().NoError(err)
	s.Pool, s.Users, s.Rides = p, usersrp.New(), ridesrp.New()
	s.now = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	s.UC, err = ridesuc.New(
		s.Pool, s.Users, s.Rides,
		fakeGeo{
			Calculator: geo.NewCalculator(geo.NewGazetteer(), nil),
			tripKm:     18,
		},
		ridesuc.WithClock(func() time.Time {
			s.now = s.now.Add(time.Minute)
			return s.now
		}),
	)
	s.Require().NoError(err)
}

func (s *RidesUseCaseTestSuite) inTx(f func(ctx context.Context, us repo.UsersTxQueryer, rs repo.RidesTxQueryer)) {
	err := s.Pool.Conn(s.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			f(ctx, s.Users.Tx(tx), s.Rides.Tx(tx))
			return nil
		})
	})
	s.Require().NoError(err)
}

func (s *RidesUseCaseTestSuite) addPassenger(name string, wallet model.Money) int {
	p := model.NewPassenger(name, "secret", name+"@ryde.test", "0115550000")
	p.Passenger.WalletBalance = wallet
	var id int
	s.inTx(func(ctx context.Context, us repo.UsersTxQueryer, _ repo.RidesTxQueryer) {
		u, err := us.Add(ctx, p)
		s.Require().NoError(err)
		id = u.ID
	})
	return id
}

func (s *RidesUseCaseTestSuite) addDriver(name, at string, stars ...int) int {
	loc, ok := geo.NewGazetteer().Lookup(at)
	s.Require().True(ok, at)
	d := model.NewDriver(
		name, "secret", name+"@ryde.test", "0115550000",
		"GP-"+name, "Toyota Corolla", loc,
	)
	for i, n := range stars {
		d.ReceivedRatings = append(d.ReceivedRatings, model.Rating{
			ID: i + 1, ToUserID: 0, Stars: n, CreatedAt: s.now,
		})
	}
	var id int
	s.inTx(func(ctx context.Context, us repo.UsersTxQueryer, _ repo.RidesTxQueryer) {
		u, err := us.Add(ctx, d)
		s.Require().NoError(err)
		id = u.ID
	})
	return id
}

func (s *RidesUseCaseTestSuite) user(id int) *model.User {
	var u *model.User
	s.inTx(func(ctx context.Context, us repo.UsersTxQueryer, _ repo.RidesTxQueryer) {
		var err error
		u, err = us.ByID(ctx, id)
		s.Require().NoError(err)
	})
	return u
}

func (s *RidesUseCaseTestSuite) TestFullLifecyclePaysFromWallet() {
	pid := s.addPassenger("alice", model.NewMoney(100))
	did := s.addDriver("bob", "Downtown")

	q, err := s.UC.Quote("downtown", "sandton")
	s.Require().NoError(err)
	s.Equal("Downtown", q.Pickup)
	s.Equal("Sandton", q.DropOff)
	s.Equal(model.NewMoney(50), q.Fare)

	r, err := s.UC.Request(s.Ctx, pid, "Downtown", "Sandton")
	s.Require().NoError(err)
	s.Equal(ridesrp.FirstID, r.ID)
	s.Equal(model.RideStatusRequested, r.Status)
	s.Equal(model.NewMoney(50), r.Fare)
	s.Nil(r.DriverID)
	s.Require().NotNil(r.CandidateDriverID)
	s.Equal(did, *r.CandidateDriverID)

	ors, err := s.UC.OpenRequests(s.Ctx, did)
	s.Require().NoError(err)
	s.Require().Len(ors, 1)
	s.True(ors[0].Suggested)

	r, err = s.UC.Accept(s.Ctx, did, r.ID)
	s.Require().NoError(err)
	s.Equal(model.RideStatusAccepted, r.Status)
	s.NotNil(r.AcceptedAt)
	s.False(s.user(did).Driver.IsAvailable)

	for _, want := range []model.RideStatus{
		model.RideStatusEnRouteToPickup,
		model.RideStatusArrivedAtPickup,
		model.RideStatusInProgress,
	} {
		r, err = s.UC.Progress(s.Ctx, did, r.ID)
		s.Require().NoError(err)
		s.Equal(want, r.Status)
	}
	s.NotNil(r.StartedAt)
	_, err = s.UC.Progress(s.Ctx, did, r.ID)
	s.True(cerr.Is(err, cerr.KindConflict), "got %v", err)

	r, err = s.UC.Complete(s.Ctx, did, r.ID)
	s.Require().NoError(err)
	s.Equal(model.RideStatusCompleted, r.Status)
	s.NotNil(r.CompletedAt)
	s.Equal(did, *r.DriverID)

	p, d := s.user(pid), s.user(did)
	s.Equal(model.NewMoney(50), p.Passenger.WalletBalance)
	s.Equal([]int{r.ID}, p.Passenger.RideHistory)
	s.Equal(model.NewMoney(50), d.Driver.TotalEarnings)
	s.Equal([]int{r.ID}, d.Driver.CompletedRides)
	s.True(d.Driver.IsAvailable)

	_, err = s.UC.ActiveRide(s.Ctx, pid)
	s.True(cerr.Is(err, cerr.KindNotFound))
	hs, err := s.UC.History(s.Ctx, did)
	s.Require().NoError(err)
	s.Len(hs, 1)
	s.assertInvariants()
}

func (s *RidesUseCaseTestSuite) TestInsufficientFundsCreatesNoRide() {
	pid := s.addPassenger("carol", model.NewMoney(10))
	s.addDriver("dave", "Downtown")

	_, err := s.UC.Request(s.Ctx, pid, "Downtown", "Sandton")
	s.True(cerr.Is(err, cerr.KindInsufficientFunds), "got %v", err)

	rs, err := s.UC.List(s.Ctx)
	s.Require().NoError(err)
	s.Empty(rs)
}

func (s *RidesUseCaseTestSuite) TestOneActiveRidePerPassenger() {
	pid := s.addPassenger("erin", model.NewMoney(200))
	s.addDriver("frank", "Downtown")

	_, err := s.UC.Request(s.Ctx, pid, "Downtown", "Sandton")
	s.Require().NoError(err)
	_, err = s.UC.Request(s.Ctx, pid, "Rosebank", "Airport")
	s.True(cerr.Is(err, cerr.KindConflict), "got %v", err)
}

func (s *RidesUseCaseTestSuite) TestMatchingOrder() {
	pid := s.addPassenger("gina", model.NewMoney(100))
	low := s.addDriver("henry", "Downtown", 3, 3)
	high := s.addDriver("ivan", "Downtown", 5, 4)
	far := s.addDriver("judy", "Pretoria", 5)

	cs, err := s.UC.Candidates(s.Ctx, "Downtown")
	s.Require().NoError(err)
	s.Require().Len(cs, 2)
	s.Equal(high, cs[0].Driver.ID)
	s.Equal(low, cs[1].Driver.ID)
	for _, c := range cs {
		s.NotEqual(far, c.Driver.ID)
	}

	r, err := s.UC.Request(s.Ctx, pid, "Downtown", "Sandton")
	s.Require().NoError(err)
	s.Equal(high, *r.CandidateDriverID)
}

func (s *RidesUseCaseTestSuite) TestNoDriverAvailable() {
	pid := s.addPassenger("kim", model.NewMoney(100))
	did := s.addDriver("leo", "Pretoria")

	_, err := s.UC.Request(s.Ctx, pid, "Downtown", "Sandton")
	s.True(cerr.Is(err, cerr.KindNoDriverAvailable), "got %v", err)

	d := s.user(did)
	d.Driver.CurrentLocation = model.Coordinate{Lat: -26.2041, Lon: 28.0473}
	d.Driver.IsAvailable = false
	s.inTx(func(ctx context.Context, us repo.UsersTxQueryer, _ repo.RidesTxQueryer) {
		s.Require().NoError(us.Update(ctx, d))
	})
	_, err = s.UC.Request(s.Ctx, pid, "Downtown", "Sandton")
	s.True(cerr.Is(err, cerr.KindNoDriverAvailable), "got %v", err)
}

func (s *RidesUseCaseTestSuite) TestConcurrentAcceptHasOneWinner() {
	pid := s.addPassenger("mia", model.NewMoney(100))
	d1 := s.addDriver("nick", "Downtown")
	d2 := s.addDriver("olga", "Sandton")
	s.inTx(func(ctx context.Context, _ repo.UsersTxQueryer, rs repo.RidesTxQueryer) {
		r, err := rs.Add(ctx, &model.Ride{
			ID:              500,
			PassengerID:     pid,
			PickupLocation:  "Downtown",
			DropOffLocation: "Sandton",
			DistanceKm:      18,
			Fare:            model.NewMoney(50),
			Status:          model.RideStatusRequested,
			RequestedAt:     s.now,
		})
		s.Require().NoError(err)
		s.Require().Equal(500, r.ID)
	})

	drivers := []int{d1, d2}
	errs := make([]error, len(drivers))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, did := range drivers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = s.UC.Accept(s.Ctx, did, 500)
		}()
	}
	close(start)
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			s.Equal(-1, winner, "two drivers accepted ride 500")
			winner = i
			continue
		}
		s.True(cerr.Is(err, cerr.KindConflict), "got %v", err)
	}
	s.Require().NotEqual(-1, winner, "no driver accepted ride 500")

	r, err := s.UC.Ride(s.Ctx, 500)
	s.Require().NoError(err)
	s.Equal(model.RideStatusAccepted, r.Status)
	s.Equal(drivers[winner], *r.DriverID)
	s.Equal(2, r.Version)
	s.False(s.user(drivers[winner]).Driver.IsAvailable)
	s.True(s.user(drivers[1-winner]).Driver.IsAvailable)
	s.assertInvariants()
}

func (s *RidesUseCaseTestSuite) TestGuards() {
	pid := s.addPassenger("pam", model.NewMoney(100))
	did := s.addDriver("quinn", "Downtown")
	other := s.addDriver("rob", "Downtown")

	r, err := s.UC.Request(s.Ctx, pid, "Downtown", "Sandton")
	s.Require().NoError(err)
	_, err = s.UC.StartEnRoute(s.Ctx, did, r.ID)
	s.True(cerr.Is(err, cerr.KindConflict), "driver does not hold it: %v", err)

	_, err = s.UC.Accept(s.Ctx, did, r.ID)
	s.Require().NoError(err)
	_, err = s.UC.StartTrip(s.Ctx, did, r.ID)
	s.True(cerr.Is(err, cerr.KindStaleState), "skipping states: %v", err)
	_, err = s.UC.StartEnRoute(s.Ctx, other, r.ID)
	s.True(cerr.Is(err, cerr.KindConflict), "other driver: %v", err)
	_, err = s.UC.Complete(s.Ctx, did, r.ID)
	s.True(cerr.Is(err, cerr.KindStaleState), "completing early: %v", err)
	_, err = s.UC.Cancel(s.Ctx, other, r.ID)
	s.True(cerr.Is(err, cerr.KindConflict), "stranger cancels: %v", err)

	r, err = s.UC.Cancel(s.Ctx, pid, r.ID)
	s.Require().NoError(err)
	s.Equal(model.RideStatusCancelled, r.Status)
	s.Equal(pid, *r.CancelledBy)
	s.True(s.user(did).Driver.IsAvailable)

	_, err = s.UC.Cancel(s.Ctx, pid, r.ID)
	s.True(cerr.Is(err, cerr.KindStaleState), "cancelling twice: %v", err)
	s.Equal(model.NewMoney(100), s.user(pid).Passenger.WalletBalance)

	r2, err := s.UC.Request(s.Ctx, pid, "Downtown", "Sandton")
	s.Require().NoError(err)
	r2, err = s.UC.Cancel(s.Ctx, pid, r2.ID)
	s.Require().NoError(err)
	s.Nil(r2.DriverID)
	_, err = s.UC.Accept(s.Ctx, did, r2.ID)
	s.True(cerr.Is(err, cerr.KindStaleState), "accepting cancelled: %v", err)
	s.assertInvariants()
}

func (s *RidesUseCaseTestSuite) TestQuoteValidation() {
	_, err := s.UC.Quote("Downtown", " downtown ")
	s.True(cerr.Is(err, cerr.KindValidation))
	_, err = s.UC.Quote("", "Sandton")
	s.True(cerr.Is(err, cerr.KindValidation))
}

func (s *RidesUseCaseTestSuite) assertInvariants() {
	rs, err := s.UC.List(s.Ctx)
	s.Require().NoError(err)
	activeByPassenger := make(map[int]int)
	activeByDriver := make(map[int]int)
	for _, r := range rs {
		if r.Status == model.RideStatusCompleted {
			s.NotNil(r.CompletedAt, "ride #%d", r.ID)
			s.NotNil(r.DriverID, "ride #%d", r.ID)
		}
		if r.Status > model.RideStatusRequested &&
			r.Status != model.RideStatusCancelled {
			s.NotNil(r.DriverID, "ride #%d", r.ID)
			s.NotNil(r.AcceptedAt, "ride #%d", r.ID)
		}
		if r.IsActive() {
			activeByPassenger[r.PassengerID]++
			if r.DriverID != nil {
				activeByDriver[*r.DriverID]++
			}
		}
	}
	for id, n := range activeByPassenger {
		s.LessOrEqual(n, 1, "passenger #%d", id)
	}
	for id, n := range activeByDriver {
		s.LessOrEqual(n, 1, "driver #%d", id)
	}
}
