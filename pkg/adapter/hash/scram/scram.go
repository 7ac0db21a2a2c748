// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram presents an implementation of SCRAM-SHA-256 and
// SCRAM-SHA-1 mechanisms. See the SHA256 and SHA1 functions for their
// instantiation logic. When a mechanism for a specific underlying hash
// function is instantiated, it can be used for generation of hash
// strings in the SCRAM standard format and for checking passwords
// against such hash strings.
// This format is also known as the scram encrypted password format,
// however, it may not be reversed (so no encryption/decryption is
// taking place).
package scram

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xdg-go/scram"
)

// DefaultIters is the iterations count which is used for hashing the
// user passwords. It follows the RFC 7677 recommendation.
const DefaultIters = 15000

// ErrMalformedHash indicates that a stored SCRAM hash string does not
// follow the standard format.
var ErrMalformedHash = errors.New("malformed scram hash string")

// Mechanism provides a Salted Challenge Response Authentication
// Mechanism (SCRAM) having a fixed underlying hash algorithm.
//
// It implements the github.com/momeni/ryde/pkg/core/scram.Hasher and
// CredentialChecker interfaces, so it may be used in the use cases
// layer without any dependency on the actual implementation. This
// package relies on the github.com/xdg-go/scram module for the SCRAM
// implementation.
type Mechanism struct {
	hashGenerator scram.HashGeneratorFcn
	outLen        int // bytes
	name          string
}

// SHA1 returns a new Mechanism instance using the SHA1 as its
// underlying hash algorithm.
func SHA1() *Mechanism {
	return &Mechanism{
		hashGenerator: scram.SHA1,
		outLen:        160 / 8,
		name:          "SCRAM-SHA-1",
	}
}

// SHA256 returns a new Mechanism instance using the SHA256 as its
// underlying hash algorithm.
func SHA256() *Mechanism {
	return &Mechanism{
		hashGenerator: scram.SHA256,
		outLen:        256 / 8,
		name:          "SCRAM-SHA-256",
	}
}

// Hash computes a hash string following the standard scram hash format,
// so it can be stored and used later for authentication.
//
// The pass argument must be non-empty. The given password will be
// normalized accoriding to the SASLprep profile (defined by RFC 4013)
// of the stringprep algorithm and any failure in that normalization
// returns an error.
//
// The salt must contain a base64 encoding of the desired salt
// bytes, otherwise, if an empty value is passed, a random salt will
// be generated and used instead.
// The iters must be at least equal to 4096. However, the RFC 7677
// recommends to use 15000 or more (see DefaultIters).
//
// In absence of errors, a hashed string will be returned which
// conforms to the following format.
//
//	SCRAM-{SHA-X}${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
func (m *Mechanism) Hash(pass, salt string, iters int) (string, error) {
	switch {
	case pass == "":
		return "", errors.New("password must be non-empty")
	case iters < 4096:
		return "", fmt.Errorf("iters (%d) is less than 4096", iters)
	}
	if salt == "" {
		saltBytes := make([]byte, m.outLen)
		if _, err := rand.Read(saltBytes); err != nil {
			return "", fmt.Errorf("creating random salt: %w", err)
		}
		salt = base64.StdEncoding.EncodeToString(saltBytes)
	}
	sc, err := m.storedCredentials(pass, salt, iters)
	if err != nil {
		return "", fmt.Errorf("obtaining stored credentials: %w", err)
	}
	h := fmt.Sprintf(
		"%s$%d:%s$%s:%s",
		m.name,
		iters, salt,
		base64.StdEncoding.EncodeToString(sc.StoredKey),
		base64.StdEncoding.EncodeToString(sc.ServerKey),
	)
	return h, nil
}

// Check verifies pass against the stored credential. A stored value
// without the "SCRAM-" prefix is taken as a plaintext password and
// compared in constant time. Otherwise, it is parsed and the storedKey
// is recomputed using the mechanism which is named by its prefix, so
// a SHA256 Mechanism may check SCRAM-SHA-1 hashes too.
func (m *Mechanism) Check(stored, pass string) (bool, error) {
	if !IsHash(stored) {
		ok := subtle.ConstantTimeCompare([]byte(stored), []byte(pass))
		return ok == 1, nil
	}
	name, iters, salt, storedKey, err := parse(stored)
	if err != nil {
		return false, err
	}
	mech := m
	switch name {
	case m.name:
	case "SCRAM-SHA-1":
		mech = SHA1()
	case "SCRAM-SHA-256":
		mech = SHA256()
	default:
		return false, fmt.Errorf("%q mechanism: %w", name, ErrMalformedHash)
	}
	if pass == "" {
		return false, nil
	}
	sc, err := mech.storedCredentials(pass, salt, iters)
	if err != nil {
		return false, fmt.Errorf("obtaining stored credentials: %w", err)
	}
	return subtle.ConstantTimeCompare(sc.StoredKey, storedKey) == 1, nil
}

// IsHash reports whether s looks like a SCRAM hash string rather than
// a plaintext password.
func IsHash(s string) bool {
	return strings.HasPrefix(s, "SCRAM-")
}

func parse(h string) (
	name string, iters int, salt string, storedKey []byte, err error,
) {
	parts := strings.Split(h, "$")
	if len(parts) != 3 {
		err = ErrMalformedHash
		return
	}
	name = parts[0]
	is, salt, ok := strings.Cut(parts[1], ":")
	if !ok {
		err = ErrMalformedHash
		return
	}
	if iters, err = strconv.Atoi(is); err != nil {
		err = fmt.Errorf("iters: %w", ErrMalformedHash)
		return
	}
	sk, _, ok := strings.Cut(parts[2], ":")
	if !ok {
		err = ErrMalformedHash
		return
	}
	if storedKey, err = base64.StdEncoding.DecodeString(sk); err != nil {
		err = fmt.Errorf("stored key: %w", ErrMalformedHash)
		return
	}
	if len(storedKey) == 0 {
		err = fmt.Errorf("empty stored key: %w", ErrMalformedHash)
	}
	return
}

func (m *Mechanism) storedCredentials(
	pass, salt string, iters int,
) (*scram.StoredCredentials, error) {
	c, err := m.hashGenerator.NewClient("username", pass, "authzID")
	if err != nil {
		return nil, fmt.Errorf("creating SCRAM client: %w", err)
	}
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 salt: %w", err)
	}
	c = c.WithMinIterations(iters)
	sc := c.GetStoredCredentials(scram.KeyFactors{
		Salt:  string(saltBytes),
		Iters: iters,
	})
	return &sc, nil
}
