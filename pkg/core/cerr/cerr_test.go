// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/stretchr/testify/assert"
)

func TestKindOfWrappedError(t *testing.T) {
	base := errors.New("ride 500 is already accepted")
	err := fmt.Errorf("accepting ride: %w", cerr.Conflict(base))

	assert.Equal(t, cerr.KindConflict, cerr.KindOf(err))
	assert.True(t, cerr.Is(err, cerr.KindConflict))
	assert.False(t, cerr.Is(err, cerr.KindStaleState))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, cerr.KindUnknown, cerr.KindOf(base))
	assert.False(t, cerr.Is(nil, cerr.KindUnknown))
}

func TestHTTPStatusCode(t *testing.T) {
	for _, tc := range []struct {
		err  *cerr.Error
		code int
	}{
		{cerr.Validation(errors.New("x")), http.StatusBadRequest},
		{cerr.NotFound(errors.New("x")), http.StatusNotFound},
		{cerr.Conflict(errors.New("x")), http.StatusConflict},
		{cerr.StaleState(errors.New("x")), http.StatusConflict},
		{cerr.InsufficientFunds(errors.New("x")), http.StatusPaymentRequired},
		{cerr.Authentication(errors.New("x")), http.StatusUnauthorized},
		{cerr.Persistence(errors.New("x")), http.StatusInternalServerError},
	} {
		assert.Equal(t, tc.code, tc.err.HTTPStatusCode(), tc.err.Kind.String())
	}
}

func TestErrorString(t *testing.T) {
	err := cerr.InsufficientFunds(errors.New("need R50.00, have R10.00"))
	assert.Equal(t, "[insufficient funds] need R50.00, have R10.00", err.Error())
}
