// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates their
// registration on a gin-gonic engine. Resources adapt the use cases
// interfaces with the REST APIs, so they receive the use case
// instances (which are built from the configuration settings) and
// register their request handlers. Each resource package is named
// like ridesrs after the use case package which it adapts.
package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/ryde/pkg/adapter/restful/gin/authrs"
	"github.com/momeni/ryde/pkg/adapter/restful/gin/reportsrs"
	"github.com/momeni/ryde/pkg/adapter/restful/gin/ridesrs"
	"github.com/momeni/ryde/pkg/core/usecase/ratingsuc"
	"github.com/momeni/ryde/pkg/core/usecase/reportuc"
	"github.com/momeni/ryde/pkg/core/usecase/ridesuc"
	"github.com/momeni/ryde/pkg/core/usecase/usersuc"
)

// Prefix is the path prefix of all REST APIs.
const Prefix = "/api/ryde/v1"

// UseCases holds the use cases which are exposed by the REST APIs.
type UseCases struct {
	Users   *usersuc.UseCase
	Rides   *ridesuc.UseCase
	Ratings *ratingsuc.UseCase
	Reports *reportuc.UseCase
}

// Register registers the tokens resource publicly and all other
// resources behind the admin bearer token middleware of iss. When
// metrics is not nil, it is served from the /metrics path too.
func Register(
	e *gin.Engine, uc UseCases, iss *authrs.Issuer, metrics http.Handler,
) error {
	if uc.Users == nil || uc.Rides == nil || uc.Ratings == nil ||
		uc.Reports == nil {
		return errors.New("all use cases must be provided")
	}
	if iss == nil {
		return errors.New("token issuer must be provided")
	}
	if metrics != nil {
		e.GET("/metrics", gin.WrapH(metrics))
	}
	r := e.Group(Prefix)
	authrs.Register(r, uc.Users, iss)
	admin := r.Group("", iss.RequireAdmin())
	reportsrs.Register(admin, uc.Reports, uc.Ratings)
	ridesrs.Register(admin, uc.Rides)
	return nil
}
