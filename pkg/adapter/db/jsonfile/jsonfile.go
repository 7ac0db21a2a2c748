// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package jsonfile implements the repo.Pool, repo.Conn, and repo.Tx
// interfaces over a directory of JSON snapshot files. Each collection
// (e.g., users.json) is kept as a single pretty-printed JSON array.
// Reads parse the whole file (a missing file is an empty collection)
// and writes serialize the whole collection and replace the file.
//
// A Tx holds the pool write lock from its beginning to its end, so
// there is a single writer at any time. Collections which are read in
// a Tx are staged in memory, mutated there, and only the mutated ones
// are written back when the Tx handler returns successfully. Each file
// is written to a temporary file first and then renamed over the old
// file, so readers never observe a half-written snapshot.
//
// The lock is held in-process only. Running several processes over the
// same directory falls back to last-writer-wins semantics.
package jsonfile

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/momeni/ryde/pkg/core/cerr"
	"github.com/momeni/ryde/pkg/core/repo"
)

// Pool manages the snapshot files of one data directory.
type Pool struct {
	dir string

	// rwlock is locked for writing during a whole Tx and for reading
	// while a Conn reads a single file or during a whole View.
	rwlock sync.RWMutex
}

// NewPool creates the dir directory (if missing) and returns a Pool
// which keeps its collections in that directory.
func NewPool(dir string) (*Pool, error) {
	if dir == "" {
		return nil, cerr.Validation(fmt.Errorf("empty data directory"))
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, cerr.Persistence(fmt.Errorf("creating %q: %w", dir, err))
	}
	return &Pool{dir: dir}, nil
}

// Dir returns the data directory of p.
func (p *Pool) Dir() string {
	return p.dir
}

// NoOpConnHandler does nothing and may be used to test a Pool.
func NoOpConnHandler(context.Context, repo.Conn) error {
	return nil
}

// Conn passes a fresh Conn to the f handler.
func (p *Pool) Conn(ctx context.Context, f repo.ConnHandler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f(ctx, &Conn{pool: p})
}
