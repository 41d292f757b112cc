// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// PrivateMessage is a directed message between two persons. Content and
// Deleted belong to the creator; Read belongs to the recipient.
type PrivateMessage struct {
	ID          ulid.ULID  `json:"id"`
	CreatorID   ulid.ULID  `json:"creator_id"`
	RecipientID ulid.ULID  `json:"recipient_id"`
	Content     string     `json:"content"`
	Deleted     bool       `json:"deleted"`
	Read        bool       `json:"read"`
	ApID        string     `json:"ap_id"`
	Local       bool       `json:"local"`
	Published   time.Time  `json:"published"`
	Updated     *time.Time `json:"updated,omitempty"`
}

// PrivateMessageView is a private message with both parties.
type PrivateMessageView struct {
	PrivateMessage PrivateMessage `json:"private_message"`
	Creator        Person         `json:"creator"`
	Recipient      Person         `json:"recipient"`
}
