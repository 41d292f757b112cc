// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrInvalidToken is returned for tokens that fail signature, issuer or
// subject checks.
var ErrInvalidToken = oops.Code("AUTH_INVALID_TOKEN").Errorf("invalid identity token")

// TokenService issues HS256 identity tokens bound to a person id. Tokens
// carry no expiry and stay valid while the account exists.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with secret. issuer is the
// instance hostname.
func NewTokenService(secret []byte, issuer string) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, oops.Code("AUTH_SECRET_MISSING").Errorf("token secret cannot be empty")
	}
	return &TokenService{secret: secret, issuer: issuer, now: time.Now}, nil
}

// Issue mints a token for personID.
func (s *TokenService) Issue(personID ulid.ULID) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  personID.String(),
		Issuer:   s.issuer,
		IssuedAt: jwt.NewNumericDate(s.now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").With("person_id", personID.String()).Wrap(err)
	}
	return signed, nil
}

// Verify checks the token and returns the person id it is bound to.
func (s *TokenService) Verify(token string) (ulid.ULID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return ulid.ULID{}, oops.Code("AUTH_INVALID_TOKEN").Wrap(err)
	}
	id, err := ulid.ParseStrict(claims.Subject)
	if err != nil {
		return ulid.ULID{}, oops.Code("AUTH_INVALID_TOKEN").With("subject", claims.Subject).Wrap(err)
	}
	return id, nil
}
