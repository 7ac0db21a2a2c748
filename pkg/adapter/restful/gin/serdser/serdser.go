// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser contains the request deserialization and response
// serialization helpers which are shared by the resource packages.
package serdser

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/momeni/ryde/pkg/core/cerr"
)

// Bind deserializes the request into req using the b binding and
// validates it. Errors are written as the response and false is
// returned, so the handler can return right away.
func Bind(c *gin.Context, req any, b binding.Binding) bool {
	return bindResult(c, c.ShouldBindWith(req, b))
}

// BindURI is like Bind, but fills req from the path parameters.
func BindURI(c *gin.Context, req any) bool {
	return bindResult(c, c.ShouldBindUri(req))
}

func bindResult(c *gin.Context, err error) bool {
	var verrs validator.ValidationErrors
	var ierr *validator.InvalidValidationError
	switch {
	case err == nil:
		return true
	case errors.As(err, &ierr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": ierr.Error(),
		})
	case errors.As(err, &verrs):
		var nameToErrs map[string][]string
		for _, ferr := range verrs {
			AddErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, nameToErrs)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": err.Error(),
		})
	}
	return false
}

// AddErr appends msgs to the name entry of the errs map, allocating
// the map if it is nil.
func AddErr(errs *map[string][]string, name string, msgs ...string) {
	if (*errs) == nil {
		*errs = make(map[string][]string)
	}
	(*errs)[name] = append((*errs)[name], msgs...)
}

// SerErr writes err as the response. Categorized errors choose their
// own status code, while other errors are reported as 500.
func SerErr(c *gin.Context, err error) {
	var ce *cerr.Error
	if errors.As(err, &ce) {
		c.JSON(ce.HTTPStatusCode(), gin.H{
			"detail": ce.Err.Error(),
			"kind":   ce.Kind.String(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"detail": err.Error(),
	})
}
