// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/model"
)

// ResetTokenBytes is the entropy of a reset token (64 hex chars).
const ResetTokenBytes = 32

// GenerateResetToken creates a secure random token and its hash.
// The plaintext token is emailed to the user; only the hash is stored.
func GenerateResetToken() (token, hash string, err error) {
	tokenBytes := make([]byte, ResetTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("RESET_TOKEN_GENERATE_FAILED").Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	return token, HashResetToken(token), nil
}

// HashResetToken computes the hex SHA256 digest of a token.
func HashResetToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// NewPasswordReset builds a pending reset request valid for ttl.
func NewPasswordReset(localUserID ulid.ULID, tokenHash string, now time.Time, ttl time.Duration) *model.PasswordResetRequest {
	return &model.PasswordResetRequest{
		ID:          core.NewIDAt(now),
		LocalUserID: localUserID,
		TokenHash:   tokenHash,
		ExpiresAt:   now.Add(ttl),
		Published:   now,
	}
}
