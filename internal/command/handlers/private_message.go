// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package handlers

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/api"
	"github.com/agorafed/agora/internal/command"
	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/mail"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

// CreatePrivateMessage stores a message, announces it to the recipient's
// instance and notifies the recipient.
func CreatePrivateMessage(ctx context.Context, call *command.Call, req *api.CreatePrivateMessage) (*api.PrivateMessageResponse, error) {
	svc := call.Services
	s := svc.Store
	now := call.Now()

	if _, err := s.GetPerson(ctx, req.RecipientID); err != nil {
		if store.IsNotFound(err) {
			return nil, errs.NotFound(errs.CodeCouldntCreatePrivateMessage, err)
		}
		return nil, errs.Internal(err)
	}

	pm := &model.PrivateMessage{
		ID:          core.NewIDAt(now),
		CreatorID:   call.User.PersonID(),
		RecipientID: req.RecipientID,
		Content:     svc.Slurs.Remove(req.Content),
		Local:       true,
		Published:   now,
	}
	if err := s.CreatePrivateMessage(ctx, pm); err != nil {
		return nil, errs.Dependency(errs.CodeCouldntCreatePrivateMessage, err)
	}

	// The federation id embeds the row id, so it is minted after the insert.
	apID := call.Instance.Endpoints().PrivateMessageID(pm.ID)
	if err := s.SetPrivateMessageApID(ctx, pm.ID, apID); err != nil {
		return nil, errs.Dependency(errs.CodeCouldntCreatePrivateMessage, err)
	}

	view, err := s.GetPrivateMessageView(ctx, pm.ID)
	if err != nil {
		return nil, errs.Dependency(errs.CodeCouldntCreatePrivateMessage, err)
	}
	if err := svc.Federation.Create(ctx, view); err != nil {
		return nil, errs.Dependency(errs.CodeCouldntCreatePrivateMessage, err)
	}

	notifyByEmail(ctx, call, view)

	resp := &api.PrivateMessageResponse{PrivateMessageView: *view}
	call.PublishToRecipient(req.RecipientID, api.OpCreatePrivateMessage, resp)
	return resp, nil
}

// notifyByEmail mails a local recipient who opted in. Failures are logged.
func notifyByEmail(ctx context.Context, call *command.Call, view *model.PrivateMessageView) {
	svc := call.Services
	if svc.Mail == nil || !call.Instance.Email.Enabled || !view.Recipient.Local {
		return
	}

	recipient, err := svc.Store.GetLocalUserView(ctx, view.Recipient.ID)
	if err != nil {
		slog.WarnContext(ctx, "private message notification skipped",
			"recipient_id", view.Recipient.ID.String(), "error", err)
		return
	}
	lu := recipient.LocalUser
	if !lu.SendNotificationsToEmail || lu.Email == nil {
		return
	}

	creator := view.Creator.Name
	msg := mail.Message{
		To:      *lu.Email,
		ToName:  recipient.Person.Name,
		Subject: "Private Message from " + creator,
		HTML: fmt.Sprintf("<h1>Private Message</h1><br><div>%s - %s</div><br><a href=%q>inbox</a>",
			html.EscapeString(creator), html.EscapeString(view.PrivateMessage.Content),
			call.Instance.Endpoints().Base()+"/inbox"),
	}
	if err := svc.Mail.Send(ctx, msg); err != nil {
		slog.WarnContext(ctx, "private message notification failed",
			"recipient_id", view.Recipient.ID.String(), "error", err)
	}
}

// EditPrivateMessage replaces the content of a message the caller sent.
func EditPrivateMessage(ctx context.Context, call *command.Call, req *api.EditPrivateMessage) (*api.PrivateMessageResponse, error) {
	svc := call.Services

	pm, err := ownedMessage(ctx, call, req.PrivateMessageID, asCreator)
	if err != nil {
		return nil, err
	}

	content := svc.Slurs.Remove(req.Content)
	if err := svc.Store.UpdatePrivateMessageContent(ctx, pm.ID, content); err != nil {
		return nil, storeErr(errs.CodeCouldntUpdatePrivateMessage, err)
	}

	return finishMessageUpdate(ctx, call, pm, api.OpEditPrivateMessage, svc.Federation.Update)
}

// DeletePrivateMessage deletes or restores a message the caller sent.
func DeletePrivateMessage(ctx context.Context, call *command.Call, req *api.DeletePrivateMessage) (*api.PrivateMessageResponse, error) {
	svc := call.Services

	pm, err := ownedMessage(ctx, call, req.PrivateMessageID, asCreator)
	if err != nil {
		return nil, err
	}

	if err := svc.Store.SetPrivateMessageDeleted(ctx, pm.ID, req.Deleted); err != nil {
		return nil, storeErr(errs.CodeCouldntUpdatePrivateMessage, err)
	}

	announce := svc.Federation.Delete
	if !req.Deleted {
		announce = svc.Federation.UndoDelete
	}
	return finishMessageUpdate(ctx, call, pm, api.OpDeletePrivateMessage, announce)
}

// MarkPrivateMessageAsRead sets the read flag of a message the caller received.
func MarkPrivateMessageAsRead(ctx context.Context, call *command.Call, req *api.MarkPrivateMessageAsRead) (*api.PrivateMessageResponse, error) {
	pm, err := ownedMessage(ctx, call, req.PrivateMessageID, asRecipient)
	if err != nil {
		return nil, err
	}

	if err := call.Services.Store.SetPrivateMessageRead(ctx, pm.ID, req.Read); err != nil {
		return nil, storeErr(errs.CodeCouldntUpdatePrivateMessage, err)
	}

	return finishMessageUpdate(ctx, call, pm, api.OpMarkPrivateMessageAsRead, nil)
}

// GetPrivateMessages lists messages the caller sent or received.
func GetPrivateMessages(ctx context.Context, call *command.Call, req *api.GetPrivateMessages) (*api.PrivateMessagesResponse, error) {
	messages, err := call.Services.Store.ListPrivateMessages(ctx, store.PrivateMessageQuery{
		PersonID:   call.User.PersonID(),
		UnreadOnly: req.UnreadOnly,
		Page:       req.PageOf(),
	})
	if err != nil {
		return nil, errs.Internal(err)
	}
	return &api.PrivateMessagesResponse{PrivateMessages: nonNil(messages)}, nil
}

type party int

const (
	asCreator party = iota
	asRecipient
)

// ownedMessage loads a message and checks the caller is the given party.
func ownedMessage(ctx context.Context, call *command.Call, id ulid.ULID, who party) (*model.PrivateMessage, error) {
	pm, err := call.Services.Store.GetPrivateMessage(ctx, id)
	if err != nil {
		return nil, readErr(errs.CodeCouldntFindPrivateMessage, err)
	}

	me := call.User.PersonID()
	switch who {
	case asCreator:
		if pm.CreatorID != me {
			return nil, errs.Auth(errs.CodeNoPrivateMessageEditAllowed)
		}
	case asRecipient:
		if pm.RecipientID != me {
			return nil, errs.Auth(errs.CodeCouldntUpdatePrivateMessage)
		}
	}
	return pm, nil
}

// finishMessageUpdate re-reads the committed view, announces it when
// announce is set, and notifies the recipient.
func finishMessageUpdate(
	ctx context.Context,
	call *command.Call,
	pm *model.PrivateMessage,
	op api.Op,
	announce func(context.Context, *model.PrivateMessageView) error,
) (*api.PrivateMessageResponse, error) {
	view, err := call.Services.Store.GetPrivateMessageView(ctx, pm.ID)
	if err != nil {
		return nil, storeErr(errs.CodeCouldntUpdatePrivateMessage, err)
	}
	if announce != nil {
		if err := announce(ctx, view); err != nil {
			return nil, errs.Dependency(errs.CodeCouldntUpdatePrivateMessage, err)
		}
	}

	resp := &api.PrivateMessageResponse{PrivateMessageView: *view}
	call.PublishToRecipient(pm.RecipientID, op, resp)
	return resp, nil
}
