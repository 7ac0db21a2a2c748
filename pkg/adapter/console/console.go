// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package console realizes the interactive menus of ryde over a pair of
// reader and writer streams (usually the standard input and output).
// Menus only parse the user inputs and render the results, delegating
// all decisions to the use cases. Errors are displayed and the user is
// returned to the current menu, so a failed operation (including a
// storage failure) never terminates the program.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/log"
	"github.com/momeni/ryde/pkg/core/model"
	"github.com/momeni/ryde/pkg/core/usecase/ratingsuc"
	"github.com/momeni/ryde/pkg/core/usecase/reportuc"
	"github.com/momeni/ryde/pkg/core/usecase/ridesuc"
	"github.com/momeni/ryde/pkg/core/usecase/usersuc"
)

// errQuit indicates that the input stream is closed, so all menus
// should return.
var errQuit = errors.New("input is closed")

// UseCases groups the use cases which are driven by the menus.
type UseCases struct {
	Users   *usersuc.UseCase
	Rides   *ridesuc.UseCase
	Ratings *ratingsuc.UseCase
	Reports *reportuc.UseCase
}

// Console reads the menu choices from its input and writes the menus
// and results to its output.
type Console struct {
	in  *bufio.Scanner
	out io.Writer
	uc  UseCases
}

// New instantiates a Console. All use cases are mandatory.
func New(in io.Reader, out io.Writer, uc UseCases) (*Console, error) {
	if uc.Users == nil || uc.Rides == nil || uc.Ratings == nil ||
		uc.Reports == nil {
		return nil, errors.New("all use cases are required")
	}
	return &Console{in: bufio.NewScanner(in), out: out, uc: uc}, nil
}

// Run shows the main menu until the user chooses to exit or the input
// stream is closed. Only the input reading errors are returned.
func (c *Console) Run(ctx context.Context) error {
	c.banner()
	err := c.mainMenu(ctx)
	if errors.Is(err, errQuit) {
		fmt.Fprintln(c.out)
		return nil
	}
	return err
}

func (c *Console) banner() {
	fmt.Fprintln(c.out, "+------------------------------------------+")
	fmt.Fprintln(c.out, "|             Welcome to Ryde              |")
	fmt.Fprintln(c.out, "|  ride-hailing simulation for the console |")
	fmt.Fprintln(c.out, "+------------------------------------------+")
}

func (c *Console) header(title string) {
	fmt.Fprintf(c.out, "\n== %s ==\n", strings.ToUpper(title))
}

func (c *Console) success(format string, args ...any) {
	fmt.Fprintf(c.out, "[ok] "+format+"\n", args...)
}

func (c *Console) failure(format string, args ...any) {
	fmt.Fprintf(c.out, "[error] "+format+"\n", args...)
}

func (c *Console) info(format string, args ...any) {
	fmt.Fprintf(c.out, "[info] "+format+"\n", args...)
}

func (c *Console) warn(format string, args ...any) {
	fmt.Fprintf(c.out, "[warn] "+format+"\n", args...)
}

// report displays err and returns to the caller menu.
func (c *Console) report(ctx context.Context, err error) {
	switch cerr.KindOf(err) {
	case cerr.KindPersistence:
		log.Error(ctx, "storage failure", log.Err("err", err))
		c.failure("Storage failure, please retry later: %v", err)
	case cerr.KindUnknown:
		log.Error(ctx, "unexpected failure", log.Err("err", err))
		c.failure("Unexpected failure: %v", err)
	default:
		c.failure("%v", err)
	}
}

func (c *Console) ask(label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", errQuit
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// choose shows a numbered menu and returns the 1-based chosen option.
func (c *Console) choose(title string, options ...string) (int, error) {
	fmt.Fprintf(c.out, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
	for i, o := range options {
		fmt.Fprintf(c.out, "  %d. %s\n", i+1, o)
	}
	return c.askInt("Enter your choice", 1, len(options))
}

func (c *Console) askInt(label string, minb, maxb int) (int, error) {
	for {
		s, err := c.ask(label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil && n >= minb && n <= maxb {
			return n, nil
		}
		c.failure("Please enter a number between %d and %d.", minb, maxb)
	}
}

// askID reads a positive identifier. Zero means that the user gave up.
func (c *Console) askID(label string) (int, error) {
	for {
		s, err := c.ask(label + " (0 to go back)")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
		if err == nil && n >= 0 {
			return n, nil
		}
		c.failure("Please enter a numeric id.")
	}
}

func (c *Console) askMoney(label string) (model.Money, error) {
	for {
		s, err := c.ask(label + " (R)")
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(strings.TrimPrefix(s, "R"), 64)
		if err == nil && f > 0 {
			return model.NewMoney(f), nil
		}
		c.failure("Please enter a positive amount, like 50.00.")
	}
}

func (c *Console) confirm(label string) (bool, error) {
	for {
		s, err := c.ask(label + " (y/n)")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(s) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		c.failure("Please answer y or n.")
	}
}
