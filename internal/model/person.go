// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package model defines the entities the command core reads and writes.
package model

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/core"
)

// Person is a federated identity, hosted here (Local) or on a remote instance.
type Person struct {
	ID                ulid.ULID  `json:"id"`
	Name              string     `json:"name"`
	PreferredUsername *string    `json:"preferred_username,omitempty"`
	Avatar            *string    `json:"avatar,omitempty"`
	Banner            *string    `json:"banner,omitempty"`
	Bio               *string    `json:"bio,omitempty"`
	MatrixUserID      *string    `json:"matrix_user_id,omitempty"`
	ActorID           string     `json:"actor_id"`
	InboxURL          string     `json:"inbox_url"`
	SharedInboxURL    *string    `json:"shared_inbox_url,omitempty"`
	PublicKey         *string    `json:"-"`
	PrivateKey        *string    `json:"-"`
	Local             bool       `json:"local"`
	Banned            bool       `json:"banned"`
	Deleted           bool       `json:"deleted"`
	Published         time.Time  `json:"published"`
	Updated           *time.Time `json:"updated,omitempty"`
}

// PersonProfile holds the mutable profile fields of a Person. A nil field is
// left unchanged; a pointer to an empty string clears the field.
type PersonProfile struct {
	PreferredUsername *string
	Avatar            *string
	Banner            *string
	Bio               *string
	MatrixUserID      *string
}

// Apply copies the set fields of p onto person. Empty strings clear.
func (p PersonProfile) Apply(person *Person) {
	set := func(dst **string, src *string) {
		if src == nil {
			return
		}
		if *src == "" {
			*dst = nil
			return
		}
		v := *src
		*dst = &v
	}
	set(&person.PreferredUsername, p.PreferredUsername)
	set(&person.Avatar, p.Avatar)
	set(&person.Banner, p.Banner)
	set(&person.Bio, p.Bio)
	set(&person.MatrixUserID, p.MatrixUserID)
}

// PersonCounts are the content aggregates shown with a person.
type PersonCounts struct {
	PostCount    int64 `json:"post_count"`
	CommentCount int64 `json:"comment_count"`
}

// PersonView is a person with aggregates, safe to return to any caller.
type PersonView struct {
	Person Person       `json:"person"`
	Counts PersonCounts `json:"counts"`
}

// LocalUser holds credentials and preferences for a local Person.
type LocalUser struct {
	ID                       ulid.ULID        `json:"id"`
	PersonID                 ulid.ULID        `json:"person_id"`
	PasswordHash             string           `json:"-"`
	Email                    *string          `json:"email,omitempty"`
	Admin                    bool             `json:"admin"`
	ShowNSFW                 bool             `json:"show_nsfw"`
	Theme                    string           `json:"theme"`
	DefaultSortType          core.SortType    `json:"default_sort_type"`
	DefaultListingType       core.ListingType `json:"default_listing_type"`
	Lang                     string           `json:"lang"`
	ShowAvatars              bool             `json:"show_avatars"`
	SendNotificationsToEmail bool             `json:"send_notifications_to_email"`
}

// Defaults applied to a freshly registered local user.
const (
	DefaultTheme = "browser"
	DefaultLang  = "browser"
)

// NewLocalUser returns a LocalUser for personID with registration defaults.
func NewLocalUser(personID ulid.ULID) LocalUser {
	return LocalUser{
		ID:                 core.NewID(),
		PersonID:           personID,
		Theme:              DefaultTheme,
		Lang:               DefaultLang,
		DefaultSortType:    core.SortActive,
		DefaultListingType: core.ListingSubscribed,
		ShowAvatars:        true,
	}
}

// LocalUserView joins a local user with its person.
type LocalUserView struct {
	Person    Person       `json:"person"`
	LocalUser LocalUser    `json:"local_user"`
	Counts    PersonCounts `json:"counts"`
}

// PersonID returns the identity this view belongs to.
func (v *LocalUserView) PersonID() ulid.ULID { return v.Person.ID }

// IsAdmin reports whether the account holds the admin flag.
func (v *LocalUserView) IsAdmin() bool { return v.LocalUser.Admin }
