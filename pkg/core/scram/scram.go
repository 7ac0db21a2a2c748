// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram exports the expected interfaces for storing and
// checking user credentials using the Salted Challenge Response
// Authentication Mechanism (SCRAM) hash format. For the corresponding
// implementation, check the adapter layer.
//
// The use cases never compare passwords themselves. A login passes the
// stored credential string (as kept in the users snapshot file or in
// the admin section of the configuration file) and the presented
// password to a CredentialChecker. Stored credentials may be plaintext
// (as created by older versions or when hashing is disabled) or a SCRAM
// hash string, so switching to hashed passwords does not require any
// change in the login flows.
package scram

// Hasher represents the expectations from a SCRAM hasher implementation
// which for a specific underlying hash function (e.g., SHA1 or SHA256)
// computes the storedKey and serverKey values whenever its Hash method
// is called with the relevant pass, salt, and iters arguments,
// representing password, random salt value, and hashing iterations
// count. A PBKDF2 algorithm is computed in order to slow down a
// dictionary attack as detailed in RFC 5802.
type Hasher interface {
	// Hash computes a hash string following the standard scram hash
	// format, so it can be stored and used later for authentication.
	//
	// The pass argument must be non-empty. The salt must contain a
	// base64 encoding of the desired salt bytes, otherwise, if an
	// empty value is passed, a random salt will be generated and used
	// instead. The iters must be at least equal to 4096.
	//
	// In absence of errors, a hashed string will be returned which
	// conforms to the following format.
	//
	//	SCRAM-{SHA-X}${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
	Hash(pass, salt string, iters int) (string, error)
}

// CredentialChecker verifies a presented password against a stored
// credential string.
type CredentialChecker interface {
	// Check returns true if pass matches the stored credential.
	// A malformed stored hash string is reported as an error, while
	// a wrong password just returns false.
	Check(stored, pass string) (bool, error)
}
