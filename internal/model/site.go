// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Site is the instance-wide record created by the first administrator.
type Site struct {
	ID               ulid.ULID `json:"id"`
	Name             string    `json:"name"`
	Description      *string   `json:"description,omitempty"`
	CreatorID        ulid.ULID `json:"creator_id"`
	OpenRegistration bool      `json:"open_registration"`
	EnableNSFW       bool      `json:"enable_nsfw"`
	Published        time.Time `json:"published"`
}
