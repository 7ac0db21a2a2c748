// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package log records ride-hailing events through the default slog
// logger. Debug, Info, Warn, and Error take typed slog.Attr values
// (see RideID, UserID, and Session) which are passed to the handler
// without the key/value boxing of the slog package-level functions.
//
// A login session or an API request may attach attributes to its
// context with the With function. Every record which is logged with
// that context (or one derived from it) carries them too, so the use
// cases do not need to know which console session or token they serve.
// An explicit attribute wins over a context one with the same key.
package log

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"time"
)

type ctxKey struct{}

// With returns a copy of ctx which carries attrs in addition to the
// attributes that ctx carries already.
func With(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, append(scoped(ctx), attrs...))
}

// scoped returns a copy of the attributes which ctx carries.
func scoped(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	return slices.Clone(attrs)
}

// Debug logs a ride-hailing event at the debug level.
func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	record(ctx, slog.LevelDebug, msg, attrs)
}

// Info logs a ride-hailing event at the info level.
func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	record(ctx, slog.LevelInfo, msg, attrs)
}

// Warn logs a rejected operation or a recoverable failure.
func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	record(ctx, slog.LevelWarn, msg, attrs)
}

// Error logs a failure which the user could not fix, e.g., an
// unreadable snapshot file.
func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	record(ctx, slog.LevelError, msg, attrs)
}

// record must be called directly by the exported functions above,
// since it reports their caller as the source of the record.
func record(
	ctx context.Context, level slog.Level, msg string, attrs []slog.Attr,
) {
	l := slog.Default()
	if !l.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	// skip runtime.Callers, record, and Debug/Info/Warn/Error
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	for _, sa := range scoped(ctx) {
		if !slices.ContainsFunc(attrs, func(a slog.Attr) bool {
			return a.Key == sa.Key
		}) {
			r.AddAttrs(sa)
		}
	}
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}
