// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settings provides the version-independent helpers which are
// used by the config versions for filling default values, verifying
// the acceptable ranges of numeric settings, and (de)serializing the
// human-readable durations.
//
// Settings fields are kept as pointers in the config structs, so a
// missing YAML key can be told apart from an explicit zero value.
// The helpers in this package operate on such pointer fields.
package settings

// Default makes (*t) to point to a newly allocated copy of v if it
// was nil. A non-nil (*t) is left unchanged.
func Default[T any](t **T, v T) {
	if (*t) != nil {
		return
	}
	(*t) = &v
}

// Nil2Zero makes (*t) to point to the zero value of T if it was nil.
// A non-nil (*t) is left unchanged.
func Nil2Zero[T any](t **T) {
	var zero T
	Default(t, zero)
}

// Value returns (*t) or the zero value of T if t is nil.
func Value[T any](t *T) T {
	if t == nil {
		var zero T
		return zero
	}
	return *t
}
