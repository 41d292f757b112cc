// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package api

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/model"
	"github.com/agorafed/agora/internal/validate"
)

// AddAdmin grants or revokes the admin flag.
type AddAdmin struct {
	Auth
	PersonID ulid.ULID `json:"person_id"`
	Added    bool      `json:"added"`
}

func (*AddAdmin) Op() Op   { return OpAddAdmin }
func (*AddAdmin) command() {}

func (r *AddAdmin) Validate() error {
	return requireID("person_id", core.IsZeroID(r.PersonID))
}

// BanUser bans or unbans a person site-wide.
type BanUser struct {
	Auth
	PersonID   ulid.ULID `json:"person_id"`
	Ban        bool      `json:"ban"`
	RemoveData bool      `json:"remove_data"`
	Reason     *string   `json:"reason,omitempty" validate:"omitempty,max=1000"`
	// Expires is a unix timestamp in seconds.
	Expires *int64 `json:"expires,omitempty" validate:"omitempty,gte=0"`
}

func (*BanUser) Op() Op   { return OpBanUser }
func (*BanUser) command() {}

func (r *BanUser) Validate() error {
	if err := requireID("person_id", core.IsZeroID(r.PersonID)); err != nil {
		return err
	}
	return validate.Struct(r)
}

// ExpiresAt converts Expires to an absolute time.
func (r *BanUser) ExpiresAt() *time.Time {
	if r.Expires == nil {
		return nil
	}
	t := time.Unix(*r.Expires, 0).UTC()
	return &t
}

// GetReportCount counts unresolved reports in the communities the caller
// moderates, or in Community only.
type GetReportCount struct {
	Auth
	Community *ulid.ULID `json:"community,omitempty"`
}

func (*GetReportCount) Op() Op          { return OpGetReportCount }
func (*GetReportCount) command()        {}
func (*GetReportCount) Validate() error { return nil }

// AddAdminResponse lists admins with the site creator first.
type AddAdminResponse struct {
	Admins []model.PersonView `json:"admins"`
}

// BanUserResponse is the re-read target.
type BanUserResponse struct {
	PersonView model.PersonView `json:"person_view"`
	Banned     bool             `json:"banned"`
}

// GetReportCountResponse holds report totals. Community echoes the filter.
type GetReportCountResponse struct {
	Community      *ulid.ULID `json:"community,omitempty"`
	CommentReports int64      `json:"comment_reports"`
	PostReports    int64      `json:"post_reports"`
}
