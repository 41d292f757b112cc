// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/model"
)

// CreatePasswordReset inserts r.
func (s *Store) CreatePasswordReset(ctx context.Context, r *model.PasswordResetRequest) error {
	_, err := s.exec(ctx, "create password reset", `
		INSERT INTO password_reset_request (`+strings.Join(resetColumns, ", ")+`)
		VALUES ($1, $2, $3, $4, $5)`,
		r.ID.String(), r.LocalUserID.String(), r.TokenHash, r.ExpiresAt, r.Published,
	)
	return err
}

// GetPasswordResetByTokenHash returns the request for tokenHash.
func (s *Store) GetPasswordResetByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordResetRequest, error) {
	var (
		id, localUserID string
		r               model.PasswordResetRequest
	)
	err := s.queryRow(ctx, "get password reset",
		`SELECT `+strings.Join(resetColumns, ", ")+` FROM password_reset_request WHERE token_hash = $1`,
		[]any{tokenHash}, &id, &localUserID, &r.TokenHash, &r.ExpiresAt, &r.Published)
	if err != nil {
		return nil, err
	}
	var p ids
	r.ID = p.id(id)
	r.LocalUserID = p.id(localUserID)
	if p.err != nil {
		return nil, p.err
	}
	return &r, nil
}

// DeletePasswordResetsForUser removes every pending request of localUserID.
func (s *Store) DeletePasswordResetsForUser(ctx context.Context, localUserID ulid.ULID) error {
	_, err := s.exec(ctx, "delete password resets for user",
		`DELETE FROM password_reset_request WHERE local_user_id = $1`, localUserID.String())
	return err
}

// DeleteExpiredPasswordResets removes requests expired at now.
func (s *Store) DeleteExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error) {
	return s.exec(ctx, "delete expired password resets",
		`DELETE FROM password_reset_request WHERE expires_at <= $1`, now)
}
