// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package model

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// ActivityKind is the federation verb of an outbound activity.
type ActivityKind string

// Outbound activity kinds.
const (
	ActivityCreate     ActivityKind = "Create"
	ActivityUpdate     ActivityKind = "Update"
	ActivityDelete     ActivityKind = "Delete"
	ActivityUndoDelete ActivityKind = "UndoDelete"
)

// Activity is an outbound federation activity queued for delivery.
type Activity struct {
	ID        ulid.ULID       `json:"id"`
	Kind      ActivityKind    `json:"kind"`
	ActorID   string          `json:"actor_id"`
	ObjectID  string          `json:"object_id"`
	Inbox     string          `json:"inbox"`
	Payload   json.RawMessage `json:"payload"`
	Published time.Time       `json:"published"`
}
