// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// TxHandler is a function which runs within a transaction. Returning
// a nil error commits the staged changes, while returning an error
// (or panicking) discards them.
type TxHandler func(context.Context, Tx) error

// Conn represents a connection to the storage. It can be used for
// reading committed snapshots or for starting a transaction.
type Conn interface {
	Tx(ctx context.Context, handler TxHandler) error

	// View runs handler with a Conn whose reads all observe the same
	// committed snapshot. No Tx may commit until handler returns, so
	// the handler must not start a Tx on either Conn.
	View(ctx context.Context, handler ConnHandler) error

	// IsConn method prevents a non-Conn object (such as a Tx) to
	// mistakenly implement the Conn interface.
	IsConn()
}
