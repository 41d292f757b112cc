// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package api defines the closed set of commands the core accepts and the
// responses it returns. Command is sealed: only the request types in this
// package implement it.
package api

import (
	"encoding/json"

	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/errs"
)

// Op names a command on the wire.
type Op string

// Supported operations.
const (
	OpLogin                    Op = "Login"
	OpRegister                 Op = "Register"
	OpGetCaptcha               Op = "GetCaptcha"
	OpSaveUserSettings         Op = "SaveUserSettings"
	OpGetUserDetails           Op = "GetUserDetails"
	OpAddAdmin                 Op = "AddAdmin"
	OpBanUser                  Op = "BanUser"
	OpGetReplies               Op = "GetReplies"
	OpGetUserMentions          Op = "GetUserMentions"
	OpMarkUserMentionAsRead    Op = "MarkUserMentionAsRead"
	OpMarkAllAsRead            Op = "MarkAllAsRead"
	OpDeleteAccount            Op = "DeleteAccount"
	OpPasswordReset            Op = "PasswordReset"
	OpPasswordChange           Op = "PasswordChange"
	OpCreatePrivateMessage     Op = "CreatePrivateMessage"
	OpEditPrivateMessage       Op = "EditPrivateMessage"
	OpDeletePrivateMessage     Op = "DeletePrivateMessage"
	OpMarkPrivateMessageAsRead Op = "MarkPrivateMessageAsRead"
	OpGetPrivateMessages       Op = "GetPrivateMessages"
	OpGetReportCount           Op = "GetReportCount"
)

// Command is a request payload. The unexported marker method closes the set.
type Command interface {
	Op() Op
	// Token returns the bearer token carried by the request, if any.
	Token() string
	// Validate checks the payload before any store access.
	Validate() error
	command()
}

// Auth carries the caller's identity token.
type Auth struct {
	Auth string `json:"auth,omitempty"`
}

// Token returns the bearer token.
func (a Auth) Token() string { return a.Auth }

// noAuth is embedded by commands that never carry a token.
type noAuth struct{}

func (noAuth) Token() string { return "" }

var constructors = map[Op]func() Command{
	OpLogin:                    func() Command { return &Login{} },
	OpRegister:                 func() Command { return &Register{} },
	OpGetCaptcha:               func() Command { return &GetCaptcha{} },
	OpSaveUserSettings:         func() Command { return &SaveUserSettings{} },
	OpGetUserDetails:           func() Command { return &GetUserDetails{} },
	OpAddAdmin:                 func() Command { return &AddAdmin{} },
	OpBanUser:                  func() Command { return &BanUser{} },
	OpGetReplies:               func() Command { return &GetReplies{} },
	OpGetUserMentions:          func() Command { return &GetUserMentions{} },
	OpMarkUserMentionAsRead:    func() Command { return &MarkUserMentionAsRead{} },
	OpMarkAllAsRead:            func() Command { return &MarkAllAsRead{} },
	OpDeleteAccount:            func() Command { return &DeleteAccount{} },
	OpPasswordReset:            func() Command { return &PasswordReset{} },
	OpPasswordChange:           func() Command { return &PasswordChange{} },
	OpCreatePrivateMessage:     func() Command { return &CreatePrivateMessage{} },
	OpEditPrivateMessage:       func() Command { return &EditPrivateMessage{} },
	OpDeletePrivateMessage:     func() Command { return &DeletePrivateMessage{} },
	OpMarkPrivateMessageAsRead: func() Command { return &MarkPrivateMessageAsRead{} },
	OpGetPrivateMessages:       func() Command { return &GetPrivateMessages{} },
	OpGetReportCount:           func() Command { return &GetReportCount{} },
}

// AllOps lists every supported operation in declaration order.
func AllOps() []Op {
	return []Op{
		OpLogin, OpRegister, OpGetCaptcha, OpSaveUserSettings, OpGetUserDetails,
		OpAddAdmin, OpBanUser, OpGetReplies, OpGetUserMentions, OpMarkUserMentionAsRead,
		OpMarkAllAsRead, OpDeleteAccount, OpPasswordReset, OpPasswordChange,
		OpCreatePrivateMessage, OpEditPrivateMessage, OpDeletePrivateMessage,
		OpMarkPrivateMessageAsRead, OpGetPrivateMessages, OpGetReportCount,
	}
}

// Decode parses data into the request type for op.
func Decode(op Op, data []byte) (Command, error) {
	newCmd, ok := constructors[op]
	if !ok {
		return nil, errs.Validationf(errs.CodeUnknownOp, "op %q", op)
	}
	cmd := newCmd()
	if len(data) == 0 {
		return cmd, nil
	}
	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, errs.Validationf(errs.CodeInvalidRequest, "decode %s: %v", op, err)
	}
	return cmd, nil
}

// Paging is the page/limit pair shared by listing commands.
type Paging struct {
	Page  *int `json:"page,omitempty"`
	Limit *int `json:"limit,omitempty"`
}

// PageOf returns the normalized page.
func (p Paging) PageOf() core.Page {
	return core.NewPage(p.Page, p.Limit)
}

func parseSort(s core.SortType) (core.SortType, error) {
	st, ok := core.ParseSortType(string(s))
	if !ok {
		return "", errs.Validationf(errs.CodeInvalidRequest, "sort: unknown sort type %q", s)
	}
	return st, nil
}

func requireID(field string, zero bool) error {
	if zero {
		return errs.Validationf(errs.CodeInvalidRequest, "%s: this field is required", field)
	}
	return nil
}
