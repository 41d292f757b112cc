// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Post is a top-level submission to a community.
type Post struct {
	ID          ulid.ULID  `json:"id"`
	Name        string     `json:"name"`
	URL         *string    `json:"url,omitempty"`
	Body        *string    `json:"body,omitempty"`
	CreatorID   ulid.ULID  `json:"creator_id"`
	CommunityID ulid.ULID  `json:"community_id"`
	Removed     bool       `json:"removed"`
	Deleted     bool       `json:"deleted"`
	NSFW        bool       `json:"nsfw"`
	Published   time.Time  `json:"published"`
	Updated     *time.Time `json:"updated,omitempty"`
}

// PostView is a post with its creator and community.
type PostView struct {
	Post      Post      `json:"post"`
	Creator   Person    `json:"creator"`
	Community Community `json:"community"`
	Saved     bool      `json:"saved"`
}

// Comment is a reply to a post or to another comment. Read tracks whether the
// parent's author has seen it.
type Comment struct {
	ID        ulid.ULID  `json:"id"`
	CreatorID ulid.ULID  `json:"creator_id"`
	PostID    ulid.ULID  `json:"post_id"`
	ParentID  *ulid.ULID `json:"parent_id,omitempty"`
	Content   string     `json:"content"`
	Removed   bool       `json:"removed"`
	Deleted   bool       `json:"deleted"`
	Read      bool       `json:"read"`
	Published time.Time  `json:"published"`
	Updated   *time.Time `json:"updated,omitempty"`
}

// CommentView is a comment with its surrounding context. RecipientID is the
// author of the parent comment, or of the post for top-level comments.
type CommentView struct {
	Comment     Comment   `json:"comment"`
	Creator     Person    `json:"creator"`
	Post        Post      `json:"post"`
	Community   Community `json:"community"`
	RecipientID ulid.ULID `json:"recipient_id"`
	Saved       bool      `json:"saved"`
}

// Mention records that a comment mentions a person.
type Mention struct {
	ID          ulid.ULID `json:"id"`
	RecipientID ulid.ULID `json:"recipient_id"`
	CommentID   ulid.ULID `json:"comment_id"`
	Read        bool      `json:"read"`
	Published   time.Time `json:"published"`
}

// MentionView is a mention with the mentioning comment.
type MentionView struct {
	Mention   Mention   `json:"person_mention"`
	Comment   Comment   `json:"comment"`
	Creator   Person    `json:"creator"`
	Post      Post      `json:"post"`
	Community Community `json:"community"`
	Recipient Person    `json:"recipient"`
}

// CommentReport is a user report on a comment awaiting moderator review.
type CommentReport struct {
	ID        ulid.ULID `json:"id"`
	CreatorID ulid.ULID `json:"creator_id"`
	CommentID ulid.ULID `json:"comment_id"`
	Reason    string    `json:"reason"`
	Resolved  bool      `json:"resolved"`
	Published time.Time `json:"published"`
}

// PostReport is a user report on a post.
type PostReport struct {
	ID        ulid.ULID `json:"id"`
	CreatorID ulid.ULID `json:"creator_id"`
	PostID    ulid.ULID `json:"post_id"`
	Reason    string    `json:"reason"`
	Resolved  bool      `json:"resolved"`
	Published time.Time `json:"published"`
}
