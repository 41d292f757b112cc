// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Default community every new account follows.
const (
	DefaultCommunityName  = "main"
	DefaultCommunityTitle = "The Default Community"
)

// Community is a topic group of posts.
type Community struct {
	ID             ulid.ULID `json:"id"`
	Name           string    `json:"name"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	CreatorID      ulid.ULID `json:"creator_id"`
	NSFW           bool      `json:"nsfw"`
	Removed        bool      `json:"removed"`
	Deleted        bool      `json:"deleted"`
	ActorID        string    `json:"actor_id"`
	FollowersURL   string    `json:"followers_url"`
	InboxURL       string    `json:"inbox_url"`
	SharedInboxURL *string   `json:"shared_inbox_url,omitempty"`
	PublicKey      *string   `json:"-"`
	PrivateKey     *string   `json:"-"`
	Local          bool      `json:"local"`
	Published      time.Time `json:"published"`
}

// CommunityMembership pairs a community with a follower or moderator.
type CommunityMembership struct {
	Community Community `json:"community"`
	Person    Person    `json:"person"`
}
