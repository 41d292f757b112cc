// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ModAction tags a moderation log entry.
type ModAction string

// Moderation actions.
const (
	ModActionAddAdmin ModAction = "add_admin"
	ModActionBan      ModAction = "ban"
)

// ModAdd records an admin promotion or demotion. Removed is true for a demotion.
type ModAdd struct {
	ID            ulid.ULID `json:"id"`
	ModPersonID   ulid.ULID `json:"mod_person_id"`
	OtherPersonID ulid.ULID `json:"other_person_id"`
	Removed       bool      `json:"removed"`
	When          time.Time `json:"when_"`
}

// ModBan records a site ban or unban.
type ModBan struct {
	ID            ulid.ULID  `json:"id"`
	ModPersonID   ulid.ULID  `json:"mod_person_id"`
	OtherPersonID ulid.ULID  `json:"other_person_id"`
	Reason        *string    `json:"reason,omitempty"`
	Banned        bool       `json:"banned"`
	Expires       *time.Time `json:"expires,omitempty"`
	When          time.Time  `json:"when_"`
}

// ModLogEntry is one append-only moderation record. Exactly one of Add and Ban
// is set, matching Action.
type ModLogEntry struct {
	Action ModAction `json:"action"`
	Add    *ModAdd   `json:"add,omitempty"`
	Ban    *ModBan   `json:"ban,omitempty"`
}
