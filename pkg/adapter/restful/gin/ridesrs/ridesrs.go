// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ridesrs provides the rides resource for looking up a ride
// and its lifecycle timestamps.
package ridesrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/ryde/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/ryde/pkg/core/usecase/ridesuc"
)

type resource struct {
	rides *ridesuc.UseCase
}

// Register adds the rides resource to r.
func Register(r *gin.RouterGroup, rides *ridesuc.UseCase) {
	rs := &resource{rides: rides}
	r.GET("/rides/:rid", rs.Get)
}

type rideURI struct {
	RideID int `uri:"rid" binding:"required,min=1"`
}

func (rs *resource) Get(c *gin.Context) {
	req := &rideURI{}
	if !serdser.BindURI(c, req) {
		return
	}
	r, err := rs.rides.Ride(c, req.RideID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, newRideResp(r))
}
