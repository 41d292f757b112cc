// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package api

import (
	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/validate"
)

// GetReplies lists comments replying to the caller.
type GetReplies struct {
	Auth
	Paging
	Sort       core.SortType `json:"sort"`
	UnreadOnly bool          `json:"unread_only"`
}

func (*GetReplies) Op() Op   { return OpGetReplies }
func (*GetReplies) command() {}

func (r *GetReplies) Validate() error {
	_, err := parseSort(r.Sort)
	return err
}

// SortType returns the requested sort. Call after Validate.
func (r *GetReplies) SortType() core.SortType {
	st, _ := parseSort(r.Sort)
	return st
}

// GetUserMentions lists mentions of the caller.
type GetUserMentions struct {
	Auth
	Paging
	Sort       core.SortType `json:"sort"`
	UnreadOnly bool          `json:"unread_only"`
}

func (*GetUserMentions) Op() Op   { return OpGetUserMentions }
func (*GetUserMentions) command() {}

func (r *GetUserMentions) Validate() error {
	_, err := parseSort(r.Sort)
	return err
}

// SortType returns the requested sort. Call after Validate.
func (r *GetUserMentions) SortType() core.SortType {
	st, _ := parseSort(r.Sort)
	return st
}

// MarkUserMentionAsRead sets the read flag of one mention.
type MarkUserMentionAsRead struct {
	Auth
	MentionID ulid.ULID `json:"person_mention_id"`
	Read      bool      `json:"read"`
}

func (*MarkUserMentionAsRead) Op() Op   { return OpMarkUserMentionAsRead }
func (*MarkUserMentionAsRead) command() {}

func (r *MarkUserMentionAsRead) Validate() error {
	return requireID("person_mention_id", core.IsZeroID(r.MentionID))
}

// MarkAllAsRead marks every reply, mention and private message read.
type MarkAllAsRead struct {
	Auth
}

func (*MarkAllAsRead) Op() Op          { return OpMarkAllAsRead }
func (*MarkAllAsRead) command()        {}
func (*MarkAllAsRead) Validate() error { return nil }

// CreatePrivateMessage sends a message to RecipientID.
type CreatePrivateMessage struct {
	Auth
	Content     string    `json:"content" validate:"required,max=10000"`
	RecipientID ulid.ULID `json:"recipient_id"`
}

func (*CreatePrivateMessage) Op() Op   { return OpCreatePrivateMessage }
func (*CreatePrivateMessage) command() {}

func (r *CreatePrivateMessage) Validate() error {
	if err := requireID("recipient_id", core.IsZeroID(r.RecipientID)); err != nil {
		return err
	}
	return validate.Struct(r)
}

// EditPrivateMessage replaces the content of a message.
type EditPrivateMessage struct {
	Auth
	PrivateMessageID ulid.ULID `json:"private_message_id"`
	Content          string    `json:"content" validate:"required,max=10000"`
}

func (*EditPrivateMessage) Op() Op   { return OpEditPrivateMessage }
func (*EditPrivateMessage) command() {}

func (r *EditPrivateMessage) Validate() error {
	if err := requireID("private_message_id", core.IsZeroID(r.PrivateMessageID)); err != nil {
		return err
	}
	return validate.Struct(r)
}

// DeletePrivateMessage deletes or restores a message.
type DeletePrivateMessage struct {
	Auth
	PrivateMessageID ulid.ULID `json:"private_message_id"`
	Deleted          bool      `json:"deleted"`
}

func (*DeletePrivateMessage) Op() Op   { return OpDeletePrivateMessage }
func (*DeletePrivateMessage) command() {}

func (r *DeletePrivateMessage) Validate() error {
	return requireID("private_message_id", core.IsZeroID(r.PrivateMessageID))
}

// MarkPrivateMessageAsRead sets the read flag of a received message.
type MarkPrivateMessageAsRead struct {
	Auth
	PrivateMessageID ulid.ULID `json:"private_message_id"`
	Read             bool      `json:"read"`
}

func (*MarkPrivateMessageAsRead) Op() Op   { return OpMarkPrivateMessageAsRead }
func (*MarkPrivateMessageAsRead) command() {}

func (r *MarkPrivateMessageAsRead) Validate() error {
	return requireID("private_message_id", core.IsZeroID(r.PrivateMessageID))
}

// GetPrivateMessages lists the caller's sent and received messages.
type GetPrivateMessages struct {
	Auth
	Paging
	UnreadOnly bool `json:"unread_only"`
}

func (*GetPrivateMessages) Op() Op          { return OpGetPrivateMessages }
func (*GetPrivateMessages) command()        {}
func (*GetPrivateMessages) Validate() error { return nil }

// GetRepliesResponse lists reply comments.
type GetRepliesResponse struct {
	Replies []model.CommentView `json:"replies"`
}

// GetUserMentionsResponse lists mentions.
type GetUserMentionsResponse struct {
	Mentions []model.MentionView `json:"mentions"`
}

// UserMentionResponse is one re-read mention.
type UserMentionResponse struct {
	MentionView model.MentionView `json:"person_mention_view"`
}

// PrivateMessageResponse is one re-read message.
type PrivateMessageResponse struct {
	PrivateMessageView model.PrivateMessageView `json:"private_message_view"`
}

// PrivateMessagesResponse lists messages.
type PrivateMessagesResponse struct {
	PrivateMessages []model.PrivateMessageView `json:"private_messages"`
}
