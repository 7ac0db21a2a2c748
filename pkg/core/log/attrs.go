// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"fmt"
	"log/slog"
)

// Valuer returns an Attr for the given slog.LogValuer value.
func Valuer(key string, value slog.LogValuer) slog.Attr {
	return slog.Any(key, value)
}

// Err returns an Attr for the given error value.
// The error value is resolved as a string by its Error() method.
// If error value is nil, the constant "no-error" value will be used.
func Err(key string, value error) slog.Attr {
	if value == nil {
		return slog.String(key, "no-error")
	}
	return slog.String(key, value.Error())
}

// RideID returns a "ride_id" Attr.
func RideID(id int) slog.Attr {
	return slog.Int("ride_id", id)
}

// UserID returns a "user_id" Attr.
func UserID(id int) slog.Attr {
	return slog.Int("user_id", id)
}

// Status returns an Attr for the key status, formatting it by its
// String method (e.g., a ride status).
func Status(key string, s fmt.Stringer) slog.Attr {
	return slog.String(key, s.String())
}

// Session returns a "session" Attr holding a console or API session
// identifier, so all log records of one login can be correlated.
func Session(id string) slog.Attr {
	return slog.String("session", id)
}
