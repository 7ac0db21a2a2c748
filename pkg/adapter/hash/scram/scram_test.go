// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scram_test

import (
	"strings"
	"testing"

	"github.com/momeni/ryde/pkg/adapter/hash/scram"
	scrami "github.com/momeni/ryde/pkg/core/scram"
	"github.com/stretchr/testify/require"
)

var (
	_ scrami.Hasher            = (*scram.Mechanism)(nil)
	_ scrami.CredentialChecker = (*scram.Mechanism)(nil)
)

func TestHashAndCheck(t *testing.T) {
	t.Parallel()
	m := scram.SHA256()
	h, err := m.Hash("admin123", "", 4096)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(h, "SCRAM-SHA-256$4096:"), h)
	require.True(t, scram.IsHash(h))

	ok, err := m.Check(h, "admin123")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = m.Check(h, "admin124")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFixedSaltIsDeterministic(t *testing.T) {
	t.Parallel()
	salt := "c2FsdHNhbHRzYWx0c2FsdA=="
	h1, err := scram.SHA1().Hash("secret", salt, 4096)
	require.NoError(t, err)
	h2, err := scram.SHA1().Hash("secret", salt, 4096)
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	ok, err := scram.SHA256().Check(h1, "secret")
	require.NoError(t, err)
	require.True(t, ok, "a SHA256 checker must accept SHA1 hashes")
}

func TestPlaintextFallback(t *testing.T) {
	t.Parallel()
	m := scram.SHA256()
	ok, err := m.Check("admin123", "admin123")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = m.Check("admin123", "Admin123")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashRejections(t *testing.T) {
	t.Parallel()
	m := scram.SHA256()
	_, err := m.Hash("", "", 4096)
	require.Error(t, err)
	_, err = m.Hash("secret", "", 100)
	require.Error(t, err)

	_, err = m.Check("SCRAM-SHA-256$broken", "secret")
	require.ErrorIs(t, err, scram.ErrMalformedHash)
	_, err = m.Check("SCRAM-MD5$4096:c2FsdA==$a2V5:a2V5", "secret")
	require.ErrorIs(t, err, scram.ErrMalformedHash)
}
