// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine instantiation, so the rest of
// ryde does not need to know which middlewares are available and how
// they log through the slog package.
package gin

import (
	"log/slog"

	"github.com/FabienMht/ginslog/logger"
	"github.com/FabienMht/ginslog/recovery"
	"github.com/gin-gonic/gin"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

// New instantiates a gin engine which runs the given middlewares for
// all requests.
func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.Use(middlewares...)
	return e
}

// Logger returns a middleware which logs each request through l.
func Logger(l *slog.Logger) HandlerFunc {
	return logger.New(l)
}

// Recovery returns a middleware which logs the panics through l and
// responds with the 500 status code.
func Recovery(l *slog.Logger) HandlerFunc {
	return recovery.New(l)
}

// TestMode switches gin to its test mode, silencing the debug logs.
func TestMode() {
	gin.SetMode(gin.TestMode)
}
