// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// PasswordResetRequest maps a hashed reset token to a local user. The raw
// token only ever exists in the reset email.
type PasswordResetRequest struct {
	ID          ulid.ULID
	LocalUserID ulid.ULID
	TokenHash   string
	ExpiresAt   time.Time
	Published   time.Time
}

// IsExpired reports whether the request can no longer be redeemed at now.
func (r *PasswordResetRequest) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
