// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr contains the categorized errors of the core layer.
// Use cases and repositories wrap their errors with one of the Kind
// categories, so the console and REST adapters may decide how to
// present them (e.g., which HTTP status code to return) without
// knowing about the individual error values.
package cerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an Error.
type Kind int

// Supported error kinds.
const (
	KindUnknown Kind = iota

	KindValidation        // malformed or out-of-range input
	KindNotFound          // unknown id or username
	KindConflict          // a guard rejected the operation
	KindStaleState        // the entity changed since it was read
	KindInsufficientFunds // wallet balance is below the fare
	KindNoDriverAvailable // matching found no candidate driver
	KindUnsupportedVariant
	KindAuthentication
	KindPersistence // reading or writing a snapshot file failed
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown",
	KindValidation:         "validation",
	KindNotFound:           "not found",
	KindConflict:           "conflict",
	KindStaleState:         "stale state",
	KindInsufficientFunds:  "insufficient funds",
	KindNoDriverAvailable:  "no driver available",
	KindUnsupportedVariant: "unsupported variant",
	KindAuthentication:     "authentication",
	KindPersistence:        "persistence",
}

// String returns a short human readable name of k.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error wraps Err with its Kind category.
type Error struct {
	Err  error
	Kind Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Err.Error())
}

// HTTPStatusCode maps the e kind to a REST API status code.
func (e *Error) HTTPStatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindStaleState:
		return http.StatusConflict
	case KindInsufficientFunds:
		return http.StatusPaymentRequired
	case KindNoDriverAvailable:
		return http.StatusServiceUnavailable
	case KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func Validation(err error) *Error {
	return &Error{Err: err, Kind: KindValidation}
}

func NotFound(err error) *Error {
	return &Error{Err: err, Kind: KindNotFound}
}

func Conflict(err error) *Error {
	return &Error{Err: err, Kind: KindConflict}
}

func StaleState(err error) *Error {
	return &Error{Err: err, Kind: KindStaleState}
}

func InsufficientFunds(err error) *Error {
	return &Error{Err: err, Kind: KindInsufficientFunds}
}

func NoDriverAvailable(err error) *Error {
	return &Error{Err: err, Kind: KindNoDriverAvailable}
}

func UnsupportedVariant(err error) *Error {
	return &Error{Err: err, Kind: KindUnsupportedVariant}
}

func Authentication(err error) *Error {
	return &Error{Err: err, Kind: KindAuthentication}
}

func Persistence(err error) *Error {
	return &Error{Err: err, Kind: KindPersistence}
}

// KindOf returns the kind of the outer most *Error in the err chain,
// or KindUnknown if there is no such error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the k kind.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
