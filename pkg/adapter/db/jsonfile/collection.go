// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jsonfile

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/goccy/go-json"
	"github.com/momeni/ryde/pkg/core/cerr"
)

// Queryer is implemented by *Conn and *Tx, so the generic collection
// functions may be used with both of them.
type Queryer interface {
	load(ctx context.Context, file string, decode decoder) (any, error)
}

type (
	decoder func(file string, data []byte) (any, error)
	encoder func(records any) ([]byte, error)
)

// Collection describes a snapshot file which holds a JSON array of T
// records. Records are identified by an integer ID which is accessed
// by the ID function.
type Collection[T any] struct {
	File string        // file name within the pool directory
	ID   func(*T) *int // returns a pointer to the ID field of a record

	// FirstID is the ID of the first record which is added with a zero
	// ID to an empty collection. Zero means one.
	FirstID int

	// Check validates a decoded record. It may be nil.
	Check func(*T) error
}

func (c *Collection[T]) decode(file string, data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, cerr.Persistence(fmt.Errorf("decoding %s: %w", file, err))
	}
	if records == nil {
		records = []T{}
	}
	if c.Check != nil {
		for i := range records {
			if err := c.Check(&records[i]); err != nil {
				return nil, fmt.Errorf("%s record #%d: %w", file, i, err)
			}
		}
	}
	return records, nil
}

func (c *Collection[T]) encode(records any) ([]byte, error) {
	rs := records.([]T)
	if rs == nil {
		rs = []T{}
	}
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// LoadAll returns all records of the c collection. The returned slice
// is a copy, so it may be modified freely (records themselves should
// not be modified in place if they contain pointers).
func LoadAll[T any, Q Queryer](
	ctx context.Context, q Q, c *Collection[T],
) ([]T, error) {
	v, err := q.load(ctx, c.File, c.decode)
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]T)), nil
}

// SaveAll stages records as the whole contents of the c collection.
// The file is written when tx commits.
func SaveAll[T any](
	ctx context.Context, tx *Tx, c *Collection[T], records []T,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.store(c.File, slices.Clone(records), c.encode)
	return nil
}

// FindByID returns the record of c with the given id, or a not found
// error.
func FindByID[T any, Q Queryer](
	ctx context.Context, q Q, c *Collection[T], id int,
) (rec T, err error) {
	records, err := LoadAll(ctx, q, c)
	if err != nil {
		return rec, err
	}
	for i := range records {
		if *c.ID(&records[i]) == id {
			return records[i], nil
		}
	}
	return rec, cerr.NotFound(fmt.Errorf("%s has no record #%d", c.File, id))
}

// FindByUnique returns the first record of c which its key matches the
// given value according to the eq function, or a not found error.
func FindByUnique[T any, Q Queryer](
	ctx context.Context, q Q, c *Collection[T],
	key func(*T) string, value string, eq func(a, b string) bool,
) (rec T, err error) {
	records, err := LoadAll(ctx, q, c)
	if err != nil {
		return rec, err
	}
	for i := range records {
		if eq(key(&records[i]), value) {
			return records[i], nil
		}
	}
	return rec, cerr.NotFound(fmt.Errorf("%s has no %q record", c.File, value))
}

// AddOne appends rec to the c collection. If its ID is zero, the next
// free ID is assigned (one more than the current maximum, or FirstID
// for an empty collection). A duplicate ID is rejected with a conflict
// error. The added record (with its ID) is returned.
func AddOne[T any](
	ctx context.Context, tx *Tx, c *Collection[T], rec T,
) (T, error) {
	records, err := LoadAll(ctx, tx, c)
	if err != nil {
		return rec, err
	}
	id := c.ID(&rec)
	maxID := 0
	for i := range records {
		rid := *c.ID(&records[i])
		if *id != 0 && rid == *id {
			return rec, cerr.Conflict(fmt.Errorf(
				"%s already has a record #%d", c.File, rid,
			))
		}
		maxID = max(maxID, rid)
	}
	if *id == 0 {
		*id = max(maxID+1, c.FirstID, 1)
	}
	records = append(records, rec)
	return rec, SaveAll(ctx, tx, c, records)
}

// UpdateOne replaces the record of c which has the same ID as rec.
// A missing record is reported with a not found error.
func UpdateOne[T any](
	ctx context.Context, tx *Tx, c *Collection[T], rec T,
) error {
	records, err := LoadAll(ctx, tx, c)
	if err != nil {
		return err
	}
	id := *c.ID(&rec)
	for i := range records {
		if *c.ID(&records[i]) == id {
			records[i] = rec
			return SaveAll(ctx, tx, c, records)
		}
	}
	return cerr.NotFound(fmt.Errorf("%s has no record #%d", c.File, id))
}
