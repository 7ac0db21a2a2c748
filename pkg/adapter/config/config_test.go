// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/momeni/ryde/pkg/adapter/config"
	"github.com/momeni/ryde/pkg/adapter/config/cfg1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSampleConfig(t *testing.T) {
	t.Setenv(cfg1.DataDirEnv, "")
	c, err := config.Load("../../../configs/sample-config.yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg1.Version, c.Version())
	assert.Equal(t, "admin", *c.Admin.Username)
	assert.NotEmpty(t, *c.HTTP.JWTSecret)
}

func TestLoadRejectsOtherMajor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte("versions:\n  config: 2.0.0\n"), 0o600)
	require.NoError(t, err)
	_, err = config.Load(path)
	assert.ErrorContains(t, err, "unexpected config version: 2.0.0")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
