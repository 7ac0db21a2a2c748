// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authrs

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer   = "ryde"
	audience = "admin"
)

// ErrEmptySecret indicates that tokens cannot be signed because no
// secret key is configured.
var ErrEmptySecret = errors.New("jwt secret key is empty")

// Issuer signs and verifies the HS256 bearer tokens of the admin.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer which signs tokens with secret, valid
// for the ttl duration after their issuance.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a new token for the subject username. The token ID is
// a random UUID which identifies the admin session in the logs.
func (iss *Issuer) Issue(subject string) (string, *jwt.RegisteredClaims, error) {
	now := iss.now()
	claims := &jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(iss.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(iss.secret)
	if err != nil {
		return "", nil, fmt.Errorf("signing token: %w", err)
	}
	return s, claims, nil
}

// Verify parses the s token, checks its signature and its registered
// claims, and returns the claims.
func (iss *Issuer) Verify(s string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(
		s, claims,
		func(*jwt.Token) (any, error) {
			return iss.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(iss.now),
	)
	if err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
