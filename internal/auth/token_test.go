// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package auth_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agorafed/agora/internal/auth"
	"github.com/agorafed/agora/internal/core"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := auth.NewTokenService([]byte("secret"), "agora.test")
	require.NoError(t, err)
	id := core.NewID()

	token, err := svc.Issue(id)
	require.NoError(t, err)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenService_Rejects(t *testing.T) {
	svc, err := auth.NewTokenService([]byte("secret"), "agora.test")
	require.NoError(t, err)
	otherKey, err := auth.NewTokenService([]byte("other"), "agora.test")
	require.NoError(t, err)
	otherIssuer, err := auth.NewTokenService([]byte("secret"), "elsewhere.test")
	require.NoError(t, err)

	id := core.NewID()
	foreignKey, err := otherKey.Issue(id)
	require.NoError(t, err)
	foreignIssuer, err := otherIssuer.Issue(id)
	require.NoError(t, err)
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "nobody", Issuer: "agora.test",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: id.String(), Issuer: "agora.test",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not-a-token",
		"other key":      foreignKey,
		"other issuer":   foreignIssuer,
		"non-ulid sub":   badSubject,
		"none algorithm": noneAlg,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(token)
			assert.Error(t, err)
		})
	}
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := auth.NewTokenService(nil, "agora.test")
	assert.Error(t, err)
}
