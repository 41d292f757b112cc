// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package handlers

import (
	"context"

	"github.com/agorafed/agora/internal/api"
	"github.com/agorafed/agora/internal/command"
	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/errs"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/store"
)

// markAllRepliesCap bounds how many unread replies MarkAllAsRead flips.
const markAllRepliesCap = 999

// GetReplies lists comments answering the caller's posts and comments.
func GetReplies(ctx context.Context, call *command.Call, req *api.GetReplies) (*api.GetRepliesResponse, error) {
	me := call.User.PersonID()
	replies, err := call.Services.Store.ListComments(ctx, store.CommentQuery{
		RecipientID: &me,
		ViewerID:    &me,
		UnreadOnly:  req.UnreadOnly,
		Sort:        req.SortType(),
		Page:        req.PageOf(),
	})
	if err != nil {
		return nil, errs.Internal(err)
	}
	return &api.GetRepliesResponse{Replies: nonNil(replies)}, nil
}

// GetUserMentions lists comments mentioning the caller.
func GetUserMentions(ctx context.Context, call *command.Call, req *api.GetUserMentions) (*api.GetUserMentionsResponse, error) {
	mentions, err := call.Services.Store.ListMentions(ctx, store.MentionQuery{
		RecipientID: call.User.PersonID(),
		UnreadOnly:  req.UnreadOnly,
		Sort:        req.SortType(),
		Page:        req.PageOf(),
	})
	if err != nil {
		return nil, errs.Internal(err)
	}
	return &api.GetUserMentionsResponse{Mentions: nonNil(mentions)}, nil
}

// MarkUserMentionAsRead sets the read flag of a mention addressed to the caller.
func MarkUserMentionAsRead(ctx context.Context, call *command.Call, req *api.MarkUserMentionAsRead) (*api.UserMentionResponse, error) {
	s := call.Services.Store

	mention, err := s.GetMention(ctx, req.MentionID)
	if err != nil {
		return nil, readErr(errs.CodeCouldntFindMention, err)
	}
	if mention.RecipientID != call.User.PersonID() {
		return nil, errs.Auth(errs.CodeCouldntUpdateComment)
	}

	if err := s.SetMentionRead(ctx, req.MentionID, req.Read); err != nil {
		return nil, storeErr(errs.CodeCouldntUpdateComment, err)
	}

	view, err := s.GetMentionView(ctx, req.MentionID)
	if err != nil {
		return nil, readErr(errs.CodeCouldntFindMention, err)
	}
	return &api.UserMentionResponse{MentionView: *view}, nil
}

// MarkAllAsRead marks the caller's unread replies, mentions and private
// messages read. Replies are flipped one at a time; a failure part way leaves
// earlier flips in place.
func MarkAllAsRead(ctx context.Context, call *command.Call, _ *api.MarkAllAsRead) (*api.GetRepliesResponse, error) {
	s := call.Services.Store
	me := call.User.PersonID()

	replies, err := s.ListComments(ctx, store.CommentQuery{
		RecipientID: &me,
		ViewerID:    &me,
		UnreadOnly:  true,
		Sort:        core.SortNew,
		Page:        core.Page{Page: 1, Limit: markAllRepliesCap},
	})
	if err != nil {
		return nil, errs.Internal(err)
	}

	// The recipient is derived from the parent, so there is no single
	// statement that selects a person's replies.
	for _, reply := range replies {
		if err := s.SetCommentRead(ctx, reply.Comment.ID, true); err != nil {
			return nil, errs.Dependency(errs.CodeCouldntUpdateComment, err)
		}
	}

	if _, err := s.MarkAllMentionsRead(ctx, me); err != nil {
		return nil, errs.Dependency(errs.CodeCouldntUpdateComment, err)
	}
	if _, err := s.MarkAllPrivateMessagesRead(ctx, me); err != nil {
		return nil, errs.Dependency(errs.CodeCouldntUpdatePrivateMessage, err)
	}

	return &api.GetRepliesResponse{Replies: []model.CommentView{}}, nil
}
