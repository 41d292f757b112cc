// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package handlers implements the account, moderation, notification and
// private message commands.
package handlers

import (
	"github.com/agorafed/agora/internal/api"
	"github.com/agorafed/agora/internal/command"
)

// Entries returns the registration for every supported command.
func Entries() []command.Entry {
	return []command.Entry{
		command.Handle(api.OpLogin, command.AuthNone, Login),
		command.Handle(api.OpRegister, command.AuthNone, Register),
		command.Handle(api.OpGetCaptcha, command.AuthNone, GetCaptcha),
		command.Handle(api.OpSaveUserSettings, command.AuthRequired, SaveUserSettings),
		command.Handle(api.OpGetUserDetails, command.AuthOptional, GetUserDetails),
		command.Handle(api.OpAddAdmin, command.AuthAdmin, AddAdmin),
		command.Handle(api.OpBanUser, command.AuthAdmin, BanUser),
		command.Handle(api.OpGetReplies, command.AuthRequired, GetReplies),
		command.Handle(api.OpGetUserMentions, command.AuthRequired, GetUserMentions),
		command.Handle(api.OpMarkUserMentionAsRead, command.AuthRequired, MarkUserMentionAsRead),
		command.Handle(api.OpMarkAllAsRead, command.AuthRequired, MarkAllAsRead),
		command.Handle(api.OpDeleteAccount, command.AuthRequired, DeleteAccount),
		command.Handle(api.OpPasswordReset, command.AuthNone, PasswordReset),
		command.Handle(api.OpPasswordChange, command.AuthNone, PasswordChange),
		command.Handle(api.OpCreatePrivateMessage, command.AuthRequired, CreatePrivateMessage),
		command.Handle(api.OpEditPrivateMessage, command.AuthRequired, EditPrivateMessage),
		command.Handle(api.OpDeletePrivateMessage, command.AuthRequired, DeletePrivateMessage),
		command.Handle(api.OpMarkPrivateMessageAsRead, command.AuthRequired, MarkPrivateMessageAsRead),
		command.Handle(api.OpGetPrivateMessages, command.AuthRequired, GetPrivateMessages),
		command.Handle(api.OpGetReportCount, command.AuthRequired, GetReportCount),
	}
}

// RegisterAll registers every command with reg. It panics on a duplicate,
// which is a programming error caught at startup.
func RegisterAll(reg *command.Registry) {
	for _, entry := range Entries() {
		mustRegister(reg, entry)
	}
}

func mustRegister(reg *command.Registry, entry command.Entry) {
	if err := reg.Register(entry); err != nil {
		panic(err)
	}
}
