// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package metrics exposes the ride lifecycle as prometheus metrics.
// The Observer is passed to the rides use case with the
// ridesuc.WithObserver option and its Handler serves the /metrics
// endpoint of the REST API.
package metrics

import (
	"net/http"

	"github.com/momeni/ryde/pkg/core/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ryde"

// Observer counts the ride transitions and tracks the number of
// active rides. Each Observer owns a separate registry, so tests and
// multiple servers in one process do not collide.
type Observer struct {
	reg *prometheus.Registry

	transitions *prometheus.CounterVec
	requested   prometheus.Counter
	noDriver    prometheus.Counter
	active      prometheus.Gauge
}

// New instantiates an Observer with its own registry which also carries
// the go runtime and process collectors.
func New() *Observer {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Observer{
		reg: reg,
		transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ride_transitions_total",
				Help:      "Total number of ride status transitions",
			},
			[]string{"from", "to"},
		),
		requested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rides_requested_total",
			Help:      "Total number of requested rides",
		}),
		noDriver: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "no_driver_available_total",
			Help:      "Total number of requests which found no driver",
		}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rides",
			Help:      "Current number of active rides",
		}),
	}
}

// RideTransitioned implements the ridesuc.Observer interface.
func (o *Observer) RideTransitioned(from, to model.RideStatus) {
	if from == model.RideStatusInvalid {
		o.requested.Inc()
		o.active.Inc()
		return
	}
	o.transitions.WithLabelValues(from.String(), to.String()).Inc()
	if to.IsTerminal() {
		o.active.Dec()
	}
}

// NoDriverAvailable implements the ridesuc.Observer interface.
func (o *Observer) NoDriverAvailable() {
	o.noDriver.Inc()
}

// SetActiveRides initializes the active rides gauge, e.g., with the
// number of active rides which are found in the data directory.
func (o *Observer) SetActiveRides(n int) {
	o.active.Set(float64(n))
}

// Registry returns the prometheus registry of o.
func (o *Observer) Registry() *prometheus.Registry {
	return o.reg
}

// Handler returns an http.Handler which serves the o metrics.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.reg, promhttp.HandlerOpts{Registry: o.reg})
}
