// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jsonfile

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/ryde/pkg/core/repo"
)

// Conn reads committed snapshots and starts transactions.
type Conn struct {
	pool *Pool
	held bool // pool read lock is held by an enclosing View
}

// Tx locks the pool for writing, runs the f handler with a fresh Tx,
// and commits the staged collections if f returns nil. If f returns an
// error or panics, staged changes are discarded and the files are left
// untouched.
func (c *Conn) Tx(ctx context.Context, f repo.TxHandler) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}
	if c.held {
		return errors.New("starting a Tx within a View")
	}
	c.pool.rwlock.Lock()
	defer c.pool.rwlock.Unlock()
	tt := &Tx{pool: c.pool, staged: make(map[string]*stage)}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panicked: %v", r)
			return
		}
		if err != nil {
			err = fmt.Errorf("handler: %w", err)
			return
		}
		if err = tt.commit(); err != nil {
			err = fmt.Errorf("commit: %w", err)
		}
	}()
	return f(ctx, tt)
}

// View holds the pool read lock while the f handler runs, so all of
// its loads observe the same commit. Nested calls reuse the held lock.
func (c *Conn) View(ctx context.Context, f repo.ConnHandler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.held {
		return f(ctx, c)
	}
	c.pool.rwlock.RLock()
	defer c.pool.rwlock.RUnlock()
	return f(ctx, &Conn{pool: c.pool, held: true})
}

func (c *Conn) IsConn() {
}

func (c *Conn) load(
	ctx context.Context, file string, decode decoder,
) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	var err error
	if c.held {
		data, err = c.pool.read(file)
	} else {
		c.pool.rwlock.RLock()
		data, err = c.pool.read(file)
		c.pool.rwlock.RUnlock()
	}
	if err != nil {
		return nil, err
	}
	return decode(file, data)
}
