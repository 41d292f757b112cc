// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package handlers

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/agorafed/agora/internal/api"
	"github.com/agorafed/agora/internal/auth"
	"github.com/agorafed/agora/internal/command"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/mail"
	"github.com/agorafed/agora/internal/store"
)

// PasswordReset mails a single-use reset link to the account owning the
// email address.
func PasswordReset(ctx context.Context, call *command.Call, req *api.PasswordReset) (*api.PasswordResetResponse, error) {
	svc := call.Services
	if svc.Mail == nil || !call.Instance.Email.Enabled {
		return nil, errs.Dependency(errs.CodeEmailNotConfigured, nil)
	}

	user, err := svc.Store.FindLocalUserViewByEmail(ctx, req.Email)
	if err != nil {
		if store.IsNotFound(err) {
			// Match the token work of the found path.
			_, _, _ = auth.GenerateResetToken()
			return nil, errs.NotFound(errs.CodeCouldntFindUser, err)
		}
		return nil, errs.Internal(err)
	}

	if user.LocalUser.Email == nil {
		return nil, errs.NotFound(errs.CodeCouldntFindUser, nil)
	}

	token, hash, err := auth.GenerateResetToken()
	if err != nil {
		return nil, errs.Internal(err)
	}
	reset := auth.NewPasswordReset(user.LocalUser.ID, hash, call.Now(), call.Instance.PasswordResetTTL)
	if err := svc.Store.CreatePasswordReset(ctx, reset); err != nil {
		return nil, errs.Internal(err)
	}

	link := call.Instance.Endpoints().PasswordChangeURL(token)
	name := user.Person.Name
	msg := mail.Message{
		To:      *user.LocalUser.Email,
		ToName:  name,
		Subject: "Password reset for " + name,
		HTML: fmt.Sprintf("<h1>Password Reset Request for %s</h1><br><a href=%q>Click here to reset your password</a>",
			html.EscapeString(name), link),
	}
	if err := svc.Mail.Send(ctx, msg); err != nil {
		return nil, errs.Dependency(errs.CodeCouldntSendEmail, err)
	}

	slog.InfoContext(ctx, "password reset requested", "local_user_id", user.LocalUser.ID.String())
	return &api.PasswordResetResponse{}, nil
}

// PasswordChange redeems a reset token, sets the new password and logs the
// user in.
func PasswordChange(ctx context.Context, call *command.Call, req *api.PasswordChange) (*api.LoginResponse, error) {
	svc := call.Services

	reset, err := svc.Store.GetPasswordResetByTokenHash(ctx, auth.HashResetToken(req.ResetToken))
	if err != nil {
		return nil, readErr(errs.CodeInvalidPasswordResetToken, err)
	}
	if reset.IsExpired(call.Now()) {
		return nil, errs.Validation(errs.CodePasswordResetTokenExpired)
	}

	hash, err := svc.Hasher.Hash(req.Password)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if err := svc.Store.UpdatePassword(ctx, reset.LocalUserID, hash); err != nil {
		return nil, storeErr(errs.CodeCouldntUpdateUser, err)
	}

	// The token is spent only once the new password is stored.
	if err := svc.Store.DeletePasswordResetsForUser(ctx, reset.LocalUserID); err != nil {
		return nil, errs.Internal(err)
	}

	user, err := svc.Store.GetLocalUserViewByID(ctx, reset.LocalUserID)
	if err != nil {
		return nil, storeErr(errs.CodeCouldntUpdateUser, err)
	}
	return issueToken(svc, user.Person.ID)
}
