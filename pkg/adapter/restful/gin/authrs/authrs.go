// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package authrs provides the tokens resource, which exchanges the
// admin credentials with a bearer token, and the middleware which
// protects the admin-only resources by verifying those tokens.
package authrs

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/ryde/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/ryde/pkg/core/log"
	"github.com/momeni/ryde/pkg/core/usecase/usersuc"
)

// SessionKey is the gin context key which keeps the token ID of the
// authenticated admin.
const SessionKey = "session"

type resource struct {
	users *usersuc.UseCase
	iss   *Issuer
}

// Register adds the tokens resource to r.
func Register(r *gin.RouterGroup, users *usersuc.UseCase, iss *Issuer) {
	rs := &resource{users: users, iss: iss}
	r.POST("/tokens", rs.Create)
}

type createReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createResp struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Create verifies the admin credentials and issues a bearer token.
func (rs *resource) Create(c *gin.Context) {
	req := &createReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return
	}
	if err := rs.users.AdminLogin(req.Username, req.Password); err != nil {
		log.Warn(c, "admin token is rejected", slog.String("username", req.Username))
		serdser.SerErr(c, err)
		return
	}
	s, claims, err := rs.iss.Issue(req.Username)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	log.Info(c, "admin token is issued", log.Session(claims.ID))
	c.JSON(http.StatusCreated, createResp{
		Token:     s,
		TokenType: "Bearer",
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// RequireAdmin returns a middleware which aborts requests that lack a
// valid admin bearer token with the 401 status code.
func (iss *Issuer) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		s, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || s == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "missing bearer token",
			})
			return
		}
		claims, err := iss.Verify(s)
		if err != nil {
			log.Debug(c, "bearer token is rejected", log.Err("err", err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "invalid or expired token",
			})
			return
		}
		c.Set(SessionKey, claims.ID)
		c.Next()
	}
}
