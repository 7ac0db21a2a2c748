// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/momeni/ryde/pkg/adapter/config"
	"github.com/momeni/ryde/pkg/adapter/config/cfg1"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/ratingsrp"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/ridesrp"
	"github.com/momeni/ryde/pkg/adapter/db/jsonfile/usersrp"
	"github.com/momeni/ryde/pkg/adapter/geo"
	"github.com/momeni/ryde/pkg/adapter/metrics"
	"github.com/momeni/ryde/pkg/core/log"
	"github.com/momeni/ryde/pkg/core/usecase/ratingsuc"
	"github.com/momeni/ryde/pkg/core/usecase/reportuc"
	"github.com/momeni/ryde/pkg/core/usecase/ridesuc"
	"github.com/momeni/ryde/pkg/core/usecase/usersuc"
)

// app keeps the configuration, the repositories, and the use cases
// which are shared by the commands.
type app struct {
	cfg      *cfg1.Config
	logger   *slog.Logger
	logFile  io.Closer
	pool     *jsonfile.Pool
	calc     *geo.Calculator
	observer *metrics.Observer

	usersrp   *usersrp.Repo
	ridesrp   *ridesrp.Repo
	ratingsrp *ratingsrp.Repo

	users   *usersuc.UseCase
	rides   *ridesuc.UseCase
	ratings *ratingsuc.UseCase
	reports *reportuc.UseCase
}

// newApp loads the cfgPath configuration file, installs its logger as
// the slog default logger, and instantiates all use cases.
func newApp(ctx context.Context) (*app, error) {
	c, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	l, closer, err := c.Logging.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	slog.SetDefault(l)
	a := &app{
		cfg:       c,
		logger:    l,
		logFile:   closer,
		calc:      c.NewCalculator(),
		observer:  metrics.New(),
		usersrp:   usersrp.New(),
		ridesrp:   ridesrp.New(),
		ratingsrp: ratingsrp.New(),
	}
	if err = a.init(ctx); err != nil {
		_ = closer.Close()
		return nil, err
	}
	log.Debug(ctx, "configuration is loaded", slog.String("path", cfgPath))
	return a, nil
}

func (a *app) init(ctx context.Context) (err error) {
	c := a.cfg
	if a.pool, err = c.ConnectionPool(); err != nil {
		return fmt.Errorf("creating JSON files pool: %w", err)
	}
	a.users, err = c.NewUsersUseCase(a.pool, a.usersrp, a.ridesrp, a.calc)
	if err != nil {
		return fmt.Errorf("creating users use case: %w", err)
	}
	a.rides, err = c.NewRidesUseCase(
		a.pool, a.usersrp, a.ridesrp, a.calc,
		ridesuc.WithObserver(a.observer),
	)
	if err != nil {
		return fmt.Errorf("creating rides use case: %w", err)
	}
	a.ratings, err = c.NewRatingsUseCase(
		a.pool, a.usersrp, a.ridesrp, a.ratingsrp,
	)
	if err != nil {
		return fmt.Errorf("creating ratings use case: %w", err)
	}
	a.reports, err = c.NewReportsUseCase(a.pool, a.usersrp, a.ridesrp)
	if err != nil {
		return fmt.Errorf("creating reports use case: %w", err)
	}
	rs, err := a.rides.List(ctx)
	if err != nil {
		return fmt.Errorf("loading rides: %w", err)
	}
	active := 0
	for _, r := range rs {
		if r.IsActive() {
			active++
		}
	}
	a.observer.SetActiveRides(active)
	return nil
}

// Close releases the log file, if any.
func (a *app) Close() error {
	return a.logFile.Close()
}
