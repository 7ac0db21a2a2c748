// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo lists the expected interfaces of the storage layer.
// Use cases obtain a Conn from a Pool and may open a Tx on it. Each
// repository (e.g., Rides) is stateless and wraps a Conn or a Tx in
// order to return a queryer object which performs the actual reads
// and writes. Reads on a Conn observe the last committed snapshot of
// each collection, while a Tx observes and stages its own changes.
// Transactions are serialized, so there is a single writer at a time
// and a Tx which re-validates a ride status before updating it can not
// be raced by another Tx.
package repo

import "context"

// ConnHandler is a function which uses a Conn to perform some reads or
// to start some transactions. The Conn must not be retained after the
// handler returns.
type ConnHandler func(context.Context, Conn) error

// Pool provides Conn instances to its callers.
type Pool interface {
	Conn(ctx context.Context, handler ConnHandler) error
}
