// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/momeni/ryde/pkg/core/cerr"
)

// Tx stages the collections which are read or written during one
// transaction. It must be used by a single go routine.
type Tx struct {
	pool   *Pool
	staged map[string]*stage
}

// stage is the in-memory copy of one collection file.
type stage struct {
	records any // a []T slice, as decoded by the collection
	dirty   bool
	encode  encoder
}

func (tt *Tx) IsTx() {
}

func (tt *Tx) load(
	ctx context.Context, file string, decode decoder,
) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s, ok := tt.staged[file]; ok {
		return s.records, nil
	}
	data, err := tt.pool.read(file)
	if err != nil {
		return nil, err
	}
	records, err := decode(file, data)
	if err != nil {
		return nil, err
	}
	tt.staged[file] = &stage{records: records}
	return records, nil
}

func (tt *Tx) store(file string, records any, encode encoder) {
	tt.staged[file] = &stage{records: records, dirty: true, encode: encode}
}

// commit writes the dirty collections, in the order of their names.
func (tt *Tx) commit() error {
	files := make([]string, 0, len(tt.staged))
	for f, s := range tt.staged {
		if s.dirty {
			files = append(files, f)
		}
	}
	sort.Strings(files)
	for _, f := range files {
		s := tt.staged[f]
		data, err := s.encode(s.records)
		if err != nil {
			return cerr.Persistence(fmt.Errorf("encoding %s: %w", f, err))
		}
		if err = tt.pool.write(f, data); err != nil {
			return err
		}
	}
	return nil
}

// read returns the contents of the file collection, or nil if the file
// does not exist yet.
func (p *Pool) read(file string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(p.dir, file))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, cerr.Persistence(fmt.Errorf("reading %s: %w", file, err))
	}
	return data, nil
}

// write replaces the file collection with data, going through a
// temporary file in the same directory.
func (p *Pool) write(file string, data []byte) (err error) {
	tmp, err := os.CreateTemp(p.dir, "."+file+".*")
	if err != nil {
		return cerr.Persistence(fmt.Errorf("creating temp file: %w", err))
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
			err = cerr.Persistence(fmt.Errorf("writing %s: %w", file, err))
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(p.dir, file))
}
