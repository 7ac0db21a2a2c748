// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/momeni/ryde/pkg/adapter/metrics"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/usecase/ridesuc"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ridesuc.Observer = (*metrics.Observer)(nil)

func TestObserverCountsTransitions(t *testing.T) {
	o := metrics.New()
	o.SetActiveRides(2)
	o.RideTransitioned(model.RideStatusInvalid, model.RideStatusRequested)
	o.RideTransitioned(model.RideStatusRequested, model.RideStatusAccepted)
	o.RideTransitioned(model.RideStatusAccepted, model.RideStatusCancelled)
	o.NoDriverAvailable()

	expected := `
# HELP ryde_active_rides Current number of active rides
# TYPE ryde_active_rides gauge
ryde_active_rides 2
# HELP ryde_no_driver_available_total Total number of requests which found no driver
# TYPE ryde_no_driver_available_total counter
ryde_no_driver_available_total 1
# HELP ryde_rides_requested_total Total number of requested rides
# TYPE ryde_rides_requested_total counter
ryde_rides_requested_total 1
`
	err := testutil.GatherAndCompare(
		o.Registry(), strings.NewReader(expected),
		"ryde_active_rides",
		"ryde_no_driver_available_total",
		"ryde_rides_requested_total",
	)
	assert.NoError(t, err)
	n, err := testutil.GatherAndCount(o.Registry(), "ryde_ride_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestHandlerServesMetrics(t *testing.T) {
	o := metrics.New()
	o.RideTransitioned(model.RideStatusInvalid, model.RideStatusRequested)

	srv := httptest.NewServer(o.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), "ryde_active_rides 1")
	assert.Contains(t, string(b), "go_goroutines")
}
