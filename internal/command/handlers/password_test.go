// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package handlers

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agorafed/agora/internal/api"
	"github.com/agorafed/agora/internal/command/handlers/testutil"
	"github.com/agorafed/agora/internal/errs"
)

var resetLink = regexp.MustCompile(`https://agora\.test/password_change/([0-9a-f]{64})`)

// requestReset runs PasswordReset for email and returns the mailed token.
func requestReset(t *testing.T, f *testutil.Fixture, email string) string {
	t.Helper()
	_, err := PasswordReset(context.Background(), f.Call(nil), &api.PasswordReset{Email: email})
	require.NoError(t, err)

	sent := f.Mail.Sent()
	require.NotEmpty(t, sent)
	m := resetLink.FindStringSubmatch(sent[len(sent)-1].HTML)
	require.Len(t, m, 2, "reset mail must contain a password change link")
	return m[1]
}

func TestPasswordReset(t *testing.T) {
	f := testutil.New(t)
	f.SeedUser(t, "alice", testutil.WithEmail("alice@example.com"))

	requestReset(t, f, "ALICE@example.com")

	sent := f.Mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@example.com", sent[0].To)
	assert.Equal(t, "Password reset for alice", sent[0].Subject)
}

func TestPasswordReset_Failures(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		f := testutil.New(t)
		_, err := PasswordReset(context.Background(), f.Call(nil), &api.PasswordReset{Email: "nobody@example.com"})
		assert.Equal(t, errs.CodeCouldntFindUser, errs.CodeOf(err))
		assert.Empty(t, f.Mail.Sent())
	})

	t.Run("email disabled", func(t *testing.T) {
		f := testutil.New(t)
		f.SeedUser(t, "alice", testutil.WithEmail("alice@example.com"))
		f.Instance.Email.Enabled = false
		_, err := PasswordReset(context.Background(), f.Call(nil), &api.PasswordReset{Email: "alice@example.com"})
		assert.Equal(t, errs.CodeEmailNotConfigured, errs.CodeOf(err))
	})

	t.Run("send fails", func(t *testing.T) {
		f := testutil.New(t)
		f.SeedUser(t, "alice", testutil.WithEmail("alice@example.com"))
		f.Mail.Err = errors.New("smtp down")
		_, err := PasswordReset(context.Background(), f.Call(nil), &api.PasswordReset{Email: "alice@example.com"})
		assert.Equal(t, errs.CodeCouldntSendEmail, errs.CodeOf(err))
		assert.Equal(t, errs.KindDependency, errs.KindOf(err))
	})
}

func TestPasswordChange(t *testing.T) {
	f := testutil.New(t)
	ctx := context.Background()
	alice := f.SeedUser(t, "alice", testutil.WithEmail("alice@example.com"))
	token := requestReset(t, f, "alice@example.com")

	req := &api.PasswordChange{ResetToken: token, Password: "brand-new-pass", PasswordVerify: "brand-new-pass"}
	resp, err := PasswordChange(ctx, f.Call(nil), req)
	require.NoError(t, err)

	personID, err := f.Tokens.Verify(resp.JWT)
	require.NoError(t, err)
	assert.Equal(t, alice.PersonID(), personID)

	ok, err := f.Hasher.Verify("brand-new-pass", f.Reload(t, alice).LocalUser.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = PasswordChange(ctx, f.Call(nil), req)
	assert.Equal(t, errs.CodeInvalidPasswordResetToken, errs.CodeOf(err), "tokens are single use")
}

func TestPasswordChange_FailedUpdateKeepsToken(t *testing.T) {
	f := testutil.New(t)
	ctx := context.Background()
	alice := f.SeedUser(t, "alice", testutil.WithEmail("alice@example.com"))
	token := requestReset(t, f, "alice@example.com")
	req := &api.PasswordChange{ResetToken: token, Password: "brand-new-pass", PasswordVerify: "brand-new-pass"}

	f.Store.FailNext("UpdatePassword", errors.New("boom"))
	_, err := PasswordChange(ctx, f.Call(nil), req)
	assert.Equal(t, errs.CodeCouldntUpdateUser, errs.CodeOf(err))
	assert.Equal(t, alice.LocalUser.PasswordHash, f.Reload(t, alice).LocalUser.PasswordHash)

	_, err = PasswordChange(ctx, f.Call(nil), req)
	require.NoError(t, err, "token survives a failed update")
}

func TestPasswordChange_Expired(t *testing.T) {
	f := testutil.New(t)
	f.SeedUser(t, "alice", testutil.WithEmail("alice@example.com"))
	token := requestReset(t, f, "alice@example.com")

	f.Now = f.Now.Add(f.Instance.PasswordResetTTL + time.Minute)
	call := f.Call(nil)

	_, err := PasswordChange(context.Background(), call, &api.PasswordChange{
		ResetToken: token, Password: "brand-new-pass", PasswordVerify: "brand-new-pass",
	})

	assert.Equal(t, errs.CodePasswordResetTokenExpired, errs.CodeOf(err))
}

func TestPasswordChange_UnknownToken(t *testing.T) {
	f := testutil.New(t)

	_, err := PasswordChange(context.Background(), f.Call(nil), &api.PasswordChange{
		ResetToken: "deadbeef", Password: "brand-new-pass", PasswordVerify: "brand-new-pass",
	})

	assert.Equal(t, errs.CodeInvalidPasswordResetToken, errs.CodeOf(err))
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}
