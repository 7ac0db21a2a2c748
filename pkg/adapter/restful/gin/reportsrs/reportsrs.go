// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package reportsrs provides the read-only reports resources of the
// admin, including the system report and the per-user reports.
package reportsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/ryde/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/ryde/pkg/core/usecase/ratingsuc"
	"github.com/momeni/ryde/pkg/core/usecase/reportuc"
)

type resource struct {
	reports *reportuc.UseCase
	ratings *ratingsuc.UseCase
}

// Register adds the reports resources to r.
func Register(
	r *gin.RouterGroup, reports *reportuc.UseCase, ratings *ratingsuc.UseCase,
) {
	rs := &resource{reports: reports, ratings: ratings}
	r.GET("/reports/system", rs.System)
	r.GET("/reports/drivers/:uid", rs.Driver)
	r.GET("/reports/passengers/:uid", rs.Passenger)
	r.GET("/drivers/flagged", rs.Flagged)
}

type userURI struct {
	UserID int `uri:"uid" binding:"required,min=1"`
}

func (rs *resource) System(c *gin.Context) {
	rep, err := rs.reports.System(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (rs *resource) Driver(c *gin.Context) {
	req := &userURI{}
	if !serdser.BindURI(c, req) {
		return
	}
	rep, err := rs.reports.Driver(c, req.UserID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (rs *resource) Passenger(c *gin.Context) {
	req := &userURI{}
	if !serdser.BindURI(c, req) {
		return
	}
	rep, err := rs.reports.Passenger(c, req.UserID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

type flaggedResp struct {
	UserID      int     `json:"user_id"`
	Username    string  `json:"username"`
	VehicleInfo string  `json:"vehicle_info"`
	Average     float64 `json:"average"`
	Ratings     int     `json:"ratings"`
}

// Flagged lists the drivers whose average rating is below the flag
// threshold, in addition to the threshold itself.
func (rs *resource) Flagged(c *gin.Context) {
	fs, err := rs.ratings.FlagLowRated(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	resp := make([]flaggedResp, 0, len(fs))
	for _, f := range fs {
		resp = append(resp, flaggedResp{
			UserID:      f.Driver.ID,
			Username:    f.Driver.Username,
			VehicleInfo: f.Driver.Driver.VehicleInfo,
			Average:     f.Average,
			Ratings:     f.Count,
		})
	}
	threshold, minRatings := rs.ratings.Threshold()
	c.JSON(http.StatusOK, gin.H{
		"threshold":   threshold,
		"min_ratings": minRatings,
		"drivers":     resp,
	})
}
