// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momeni/ryde/pkg/adapter/restful/gin/routes"
	"github.com/momeni/ryde/pkg/core/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the admin REST API",
	Long: `Serve the admin REST API on the address which is configured in
the http section of the configuration file. An admin bearer token may be
obtained by posting the admin credentials to /api/ryde/v1/tokens and
is required by the reports, flagged drivers, and rides resources.
The prometheus metrics are served from /metrics without a token.
The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: serve,
	Args: cobra.NoArgs,
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		cmd.Context(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	iss, err := a.cfg.HTTP.NewIssuer()
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}
	e := a.cfg.HTTP.NewEngine(a.logger)
	err = routes.Register(e, routes.UseCases{
		Users:   a.users,
		Rides:   a.rides,
		Ratings: a.ratings,
		Reports: a.reports,
	}, iss, a.observer.Handler())
	if err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	srv := a.cfg.HTTP.NewServer(e)
	errs := make(chan error, 1)
	go func() {
		log.Info(ctx, "serving REST API", slog.String("address", srv.Addr))
		errs <- srv.ListenAndServe()
	}()
	select {
	case err = <-errs:
		return fmt.Errorf("running HTTP server: %w", err)
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down REST API")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	if err = <-errs; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("running HTTP server: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
