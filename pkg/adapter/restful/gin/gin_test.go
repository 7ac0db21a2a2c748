// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/ratingsrp"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/ridesrp"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/usersrp"
	"github.com/momeni/ryde/pkg/adapter/geo"
	"github.com/momeni/ryde/pkg/adapter/hash/scram"
	"github.com/momeni/ryde/pkg/adapter/metrics"
	"github.com/momeni/ryde/pkg/adapter/restful/gin"
	"github.com/momeni/ryde/pkg/adapter/restful/gin/authrs"
	"github.com/momeni/ryde/pkg/adapter/restful/gin/routes"
	"github.com/momeni/ryde/pkg/core/usecase/ratingsuc"
	"github.com/momeni/ryde/pkg/core/usecase/reportuc"
	"github.com/momeni/ryde/pkg/core/usecase/ridesuc"
	"github.com/momeni/ryde/pkg/core/usecase/usersuc"
	"github.com/stretchr/testify/suite"
)

type GinTestSuite struct {
	suite.Suite

	Ctx context.Context
	UC  routes.UseCases
	Gin *gin.Engine

	RideID int
}

func TestGinTestSuite(t *testing.T) {
	gin.TestMode()
	suite.Run(t, &GinTestSuite{Ctx: context.Background()})
}

func (gts *GinTestSuite) SetupSuite() {
	p, err := jsonfile.NewPool(gts.T().TempDir())
	gts.Require().NoError(err, "cannot create the JSON files pool")
	users, rides, ratings := usersrp.New(), ridesrp.New(), ratingsrp.New()
	calc := geo.NewCalculator(geo.NewGazetteer(), geo.DefaultFallback)
	observer := metrics.New()

	gts.UC.Users, err = usersuc.New(
		p, users, rides, calc, scram.SHA256(),
		usersuc.WithAdmin(usersuc.AdminCredentials{
			Username: "admin", Password: "admin123",
		}),
	)
	gts.Require().NoError(err)
	gts.UC.Rides, err = ridesuc.New(
		p, users, rides, calc, ridesuc.WithObserver(observer),
	)
	gts.Require().NoError(err)
	gts.UC.Ratings, err = ratingsuc.New(p, users, rides, ratings)
	gts.Require().NoError(err)
	gts.UC.Reports, err = reportuc.New(p, users, rides)
	gts.Require().NoError(err)

	gts.completeRide()

	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	gts.Gin = gin.New(gin.Logger(l), gin.Recovery(l))
	gts.Require().NotNil(gts.Gin, "cannot instantiate Gin engine")
	iss, err := authrs.NewIssuer("test-secret", time.Hour)
	gts.Require().NoError(err)
	err = routes.Register(gts.Gin, gts.UC, iss, observer.Handler())
	gts.Require().NoError(err, "failed to register Gin routes")
}

func (gts *GinTestSuite) completeRide() {
	alice, err := gts.UC.Users.RegisterPassenger(gts.Ctx, usersuc.Account{
		Username: "alice",
		Password: "secret1",
		Email:    "alice@example.com",
		Phone:    "0115550101",
	})
	gts.Require().NoError(err)
	bob, err := gts.UC.Users.RegisterDriver(gts.Ctx, usersuc.DriverAccount{
		Account: usersuc.Account{
			Username: "bob",
			Password: "secret2",
			Email:    "bob@example.com",
			Phone:    "0825550102",
		},
		LicenseNumber: "LIC-1",
		VehicleInfo:   "Toyota Corolla",
		Location:      "Rosebank",
	})
	gts.Require().NoError(err)
	r, err := gts.UC.Rides.Request(gts.Ctx, alice.ID, "Downtown", "Sandton")
	gts.Require().NoError(err)
	_, err = gts.UC.Rides.Accept(gts.Ctx, bob.ID, r.ID)
	gts.Require().NoError(err)
	for range 3 {
		_, err = gts.UC.Rides.Progress(gts.Ctx, bob.ID, r.ID)
		gts.Require().NoError(err)
	}
	_, err = gts.UC.Rides.Complete(gts.Ctx, bob.ID, r.ID)
	gts.Require().NoError(err)
	gts.RideID = r.ID
}

// serve sends a request with an optional JSON body and bearer token,
// decoding the JSON response into res when it is not nil.
func (gts *GinTestSuite) serve(
	method, path string, body any, token string, res any,
) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		gts.Require().NoError(err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, path, r)
	gts.Require().NoError(err, "cannot create request")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	gts.Gin.ServeHTTP(w, req)
	if res != nil {
		gts.NoError(json.Unmarshal(w.Body.Bytes(), res), "body is not json")
	}
	return w
}

func (gts *GinTestSuite) token() string {
	res := &struct {
		Token     string
		TokenType string `json:"token_type"`
	}{}
	w := gts.serve(http.MethodPost, routes.Prefix+"/tokens", map[string]string{
		"username": "admin",
		"password": "admin123",
	}, "", res)
	gts.Require().Equal(http.StatusCreated, w.Code)
	gts.Equal("Bearer", res.TokenType)
	gts.Require().NotEmpty(res.Token)
	return res.Token
}

func (gts *GinTestSuite) TestTokenRejectsBadCredentials() {
	for _, tc := range []struct {
		name   string
		body   map[string]string
		code   int
		detail string
	}{
		{
			name:   "wrong password",
			body:   map[string]string{"username": "admin", "password": "nope"},
			code:   http.StatusUnauthorized,
			detail: "invalid username or password",
		},
		{
			name:   "missing password",
			body:   map[string]string{"username": "admin"},
			code:   http.StatusBadRequest,
			detail: "",
		},
	} {
		gts.Run(tc.name, func() {
			res := map[string]any{}
			w := gts.serve(
				http.MethodPost, routes.Prefix+"/tokens", tc.body, "", &res,
			)
			gts.Equal(tc.code, w.Code)
			if tc.detail != "" {
				gts.Contains(res["detail"], tc.detail)
			} else {
				gts.Contains(res, "Password")
			}
		})
	}
}

func (gts *GinTestSuite) TestReportsRequireToken() {
	for _, token := range []string{"", "not-a-jwt"} {
		res := &struct{ Detail string }{}
		w := gts.serve(
			http.MethodGet, routes.Prefix+"/reports/system", nil, token, res,
		)
		gts.Equal(http.StatusUnauthorized, w.Code)
		gts.NotEmpty(res.Detail)
	}

	other, err := authrs.NewIssuer("other-secret", time.Hour)
	gts.Require().NoError(err)
	forged, _, err := other.Issue("admin")
	gts.Require().NoError(err)
	w := gts.serve(
		http.MethodGet, routes.Prefix+"/reports/system", nil, forged, nil,
	)
	gts.Equal(http.StatusUnauthorized, w.Code, "foreign signature")
}

func (gts *GinTestSuite) TestSystemReport() {
	res := &struct {
		Rides struct {
			Total    int
			ByStatus map[string]int `json:"by_status"`
		}
		Revenue struct {
			Total float64
		}
		Routes []struct {
			Route string
			Count int
		}
	}{}
	w := gts.serve(
		http.MethodGet, routes.Prefix+"/reports/system", nil, gts.token(), res,
	)
	gts.Require().Equal(http.StatusOK, w.Code)
	gts.Equal(1, res.Rides.Total)
	gts.Equal(1, res.Rides.ByStatus["Completed"])
	gts.InDelta(32.0, res.Revenue.Total, 1e-9)
	gts.Require().Len(res.Routes, 1)
	gts.Equal("Downtown → Sandton", res.Routes[0].Route)
}

func (gts *GinTestSuite) TestPersonalReports() {
	token := gts.token()
	driver := &struct {
		Username       string
		Earnings       float64
		CompletedRides int `json:"completed_rides"`
	}{}
	w := gts.serve(
		http.MethodGet, routes.Prefix+"/reports/drivers/2", nil, token, driver,
	)
	gts.Require().Equal(http.StatusOK, w.Code)
	gts.Equal("bob", driver.Username)
	gts.InDelta(32.0, driver.Earnings, 1e-9)
	gts.Equal(1, driver.CompletedRides)

	passenger := &struct {
		Username string
		Balance  float64
	}{}
	w = gts.serve(
		http.MethodGet, routes.Prefix+"/reports/passengers/1", nil, token,
		passenger,
	)
	gts.Require().Equal(http.StatusOK, w.Code)
	gts.Equal("alice", passenger.Username)
	gts.InDelta(68.0, passenger.Balance, 1e-9)

	res := &struct{ Kind string }{}
	w = gts.serve(
		http.MethodGet, routes.Prefix+"/reports/drivers/1", nil, token, res,
	)
	gts.Equal(http.StatusBadRequest, w.Code, "alice is not a driver")
	gts.Equal("validation", res.Kind)

	w = gts.serve(
		http.MethodGet, routes.Prefix+"/reports/drivers/abc", nil, token, nil,
	)
	gts.Equal(http.StatusBadRequest, w.Code)
}

func (gts *GinTestSuite) TestRide() {
	token := gts.token()
	res := &struct {
		ID          int
		DriverID    *int `json:"driver_id"`
		Status      string
		Fare        float64
		CompletedAt *time.Time `json:"completed_at"`
	}{}
	w := gts.serve(
		http.MethodGet, routes.Prefix+"/rides/1000", nil, token, res,
	)
	gts.Require().Equal(http.StatusOK, w.Code)
	gts.Equal(gts.RideID, res.ID)
	gts.Equal("Completed", res.Status)
	gts.InDelta(32.0, res.Fare, 1e-9)
	gts.Require().NotNil(res.DriverID)
	gts.Equal(2, *res.DriverID)
	gts.NotNil(res.CompletedAt)

	nf := &struct{ Kind string }{}
	w = gts.serve(http.MethodGet, routes.Prefix+"/rides/999", nil, token, nf)
	gts.Equal(http.StatusNotFound, w.Code)
	gts.Equal("not found", nf.Kind)

	fieldErrs := map[string][]string{}
	w = gts.serve(http.MethodGet, routes.Prefix+"/rides/0", nil, token, &fieldErrs)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Contains(fieldErrs, "RideID")
}

func (gts *GinTestSuite) TestFlaggedDrivers() {
	res := &struct {
		Threshold  float64
		MinRatings int `json:"min_ratings"`
		Drivers    []struct{ Username string }
	}{}
	w := gts.serve(
		http.MethodGet, routes.Prefix+"/drivers/flagged", nil, gts.token(), res,
	)
	gts.Require().Equal(http.StatusOK, w.Code)
	gts.InDelta(ratingsuc.DefaultFlagThreshold, res.Threshold, 1e-9)
	gts.Equal(ratingsuc.DefaultFlagMinRatings, res.MinRatings)
	gts.Empty(res.Drivers)
}

func (gts *GinTestSuite) TestMetrics() {
	req, err := http.NewRequest(http.MethodGet, "/metrics", nil)
	gts.Require().NoError(err)
	w := httptest.NewRecorder()
	gts.Gin.ServeHTTP(w, req)
	gts.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	gts.True(strings.Contains(body, "ryde_rides_requested_total 1"), body)
	gts.Contains(body, `ryde_ride_transitions_total{from="InProgress",to="Completed"} 1`)
	gts.Contains(body, "ryde_active_rides 0")
}
