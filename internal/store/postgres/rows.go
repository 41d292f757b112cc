// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package postgres

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/model"
)

// Column lists, in scan order.
var (
	personColumns = []string{
		"id", "name", "preferred_username", "avatar", "banner", "bio", "matrix_user_id",
		"actor_id", "inbox_url", "shared_inbox_url", "public_key", "private_key",
		"local", "banned", "deleted", "published", "updated",
	}
	localUserColumns = []string{
		"id", "person_id", "password_encrypted", "email", "admin", "show_nsfw", "theme",
		"default_sort_type", "default_listing_type", "lang", "show_avatars",
		"send_notifications_to_email",
	}
	communityColumns = []string{
		"id", "name", "title", "description", "creator_id", "nsfw", "removed", "deleted",
		"actor_id", "followers_url", "inbox_url", "shared_inbox_url", "public_key",
		"private_key", "local", "published",
	}
	postColumns = []string{
		"id", "name", "url", "body", "creator_id", "community_id", "removed", "deleted",
		"nsfw", "published", "updated",
	}
	commentColumns = []string{
		"id", "creator_id", "post_id", "parent_id", "content", "removed", "deleted", "read",
		"published", "updated",
	}
	mentionColumns = []string{"id", "recipient_id", "comment_id", "read", "published"}
	privateMessageColumns = []string{
		"id", "creator_id", "recipient_id", "content", "deleted", "read", "ap_id", "local",
		"published", "updated",
	}
	siteColumns = []string{
		"id", "name", "description", "creator_id", "open_registration", "enable_nsfw", "published",
	}
	resetColumns = []string{"id", "local_user_id", "token_hash", "expires_at", "published"}
)

// cols renders a column list qualified by alias.
func cols(alias string, names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = alias + "." + n
	}
	return strings.Join(parts, ", ")
}

// ids collects ULID parse failures so row conversion stays linear.
type ids struct{ err error }

func (p *ids) id(s string) ulid.ULID {
	id, err := ulid.ParseStrict(s)
	if err != nil && p.err == nil {
		p.err = oops.Code("STORE_INVALID_ID").With("id", s).Wrap(err)
	}
	return id
}

func (p *ids) opt(s *string) *ulid.ULID {
	if s == nil {
		return nil
	}
	id := p.id(*s)
	return &id
}

func optString(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

type personRow struct {
	id, name, actorID, inboxURL            string
	preferred, avatar, banner, bio, matrix *string
	sharedInbox, publicKey, privateKey     *string
	local, banned, deleted                 bool
	published                              time.Time
	updated                                *time.Time
}

func (r *personRow) targets() []any {
	return []any{
		&r.id, &r.name, &r.preferred, &r.avatar, &r.banner, &r.bio, &r.matrix,
		&r.actorID, &r.inboxURL, &r.sharedInbox, &r.publicKey, &r.privateKey,
		&r.local, &r.banned, &r.deleted, &r.published, &r.updated,
	}
}

func (r *personRow) model(p *ids) model.Person {
	return model.Person{
		ID:                p.id(r.id),
		Name:              r.name,
		PreferredUsername: r.preferred,
		Avatar:            r.avatar,
		Banner:            r.banner,
		Bio:               r.bio,
		MatrixUserID:      r.matrix,
		ActorID:           r.actorID,
		InboxURL:          r.inboxURL,
		SharedInboxURL:    r.sharedInbox,
		PublicKey:         r.publicKey,
		PrivateKey:        r.privateKey,
		Local:             r.local,
		Banned:            r.banned,
		Deleted:           r.deleted,
		Published:         r.published,
		Updated:           r.updated,
	}
}

type localUserRow struct {
	id, personID, password, theme, sortType, listingType, lang string
	email                                                      *string
	admin, showNSFW, showAvatars, sendEmail                    bool
}

func (r *localUserRow) targets() []any {
	return []any{
		&r.id, &r.personID, &r.password, &r.email, &r.admin, &r.showNSFW, &r.theme,
		&r.sortType, &r.listingType, &r.lang, &r.showAvatars, &r.sendEmail,
	}
}

func (r *localUserRow) model(p *ids) model.LocalUser {
	return model.LocalUser{
		ID:                       p.id(r.id),
		PersonID:                 p.id(r.personID),
		PasswordHash:             r.password,
		Email:                    r.email,
		Admin:                    r.admin,
		ShowNSFW:                 r.showNSFW,
		Theme:                    r.theme,
		DefaultSortType:          core.SortType(r.sortType),
		DefaultListingType:       core.ListingType(r.listingType),
		Lang:                     r.lang,
		ShowAvatars:              r.showAvatars,
		SendNotificationsToEmail: r.sendEmail,
	}
}

type countsRow struct{ posts, comments int64 }

func (r *countsRow) targets() []any { return []any{&r.posts, &r.comments} }

func (r *countsRow) model() model.PersonCounts {
	return model.PersonCounts{PostCount: r.posts, CommentCount: r.comments}
}

// countsSQL computes person aggregates for the person aliased as alias.
func countsSQL(alias string) string {
	return `(SELECT count(*) FROM post x WHERE x.creator_id = ` + alias + `.id AND NOT x.deleted),
		(SELECT count(*) FROM comment y WHERE y.creator_id = ` + alias + `.id AND NOT y.deleted)`
}

type communityRow struct {
	id, name, title, creatorID, actorID, followersURL, inboxURL string
	description, sharedInbox, publicKey, privateKey             *string
	nsfw, removed, deleted, local                               bool
	published                                                   time.Time
}

func (r *communityRow) targets() []any {
	return []any{
		&r.id, &r.name, &r.title, &r.description, &r.creatorID, &r.nsfw, &r.removed, &r.deleted,
		&r.actorID, &r.followersURL, &r.inboxURL, &r.sharedInbox, &r.publicKey,
		&r.privateKey, &r.local, &r.published,
	}
}

func (r *communityRow) model(p *ids) model.Community {
	return model.Community{
		ID:             p.id(r.id),
		Name:           r.name,
		Title:          r.title,
		Description:    r.description,
		CreatorID:      p.id(r.creatorID),
		NSFW:           r.nsfw,
		Removed:        r.removed,
		Deleted:        r.deleted,
		ActorID:        r.actorID,
		FollowersURL:   r.followersURL,
		InboxURL:       r.inboxURL,
		SharedInboxURL: r.sharedInbox,
		PublicKey:      r.publicKey,
		PrivateKey:     r.privateKey,
		Local:          r.local,
		Published:      r.published,
	}
}

type postRow struct {
	id, name, creatorID, communityID string
	url, body                        *string
	removed, deleted, nsfw           bool
	published                        time.Time
	updated                          *time.Time
}

func (r *postRow) targets() []any {
	return []any{
		&r.id, &r.name, &r.url, &r.body, &r.creatorID, &r.communityID, &r.removed, &r.deleted,
		&r.nsfw, &r.published, &r.updated,
	}
}

func (r *postRow) model(p *ids) model.Post {
	return model.Post{
		ID:          p.id(r.id),
		Name:        r.name,
		URL:         r.url,
		Body:        r.body,
		CreatorID:   p.id(r.creatorID),
		CommunityID: p.id(r.communityID),
		Removed:     r.removed,
		Deleted:     r.deleted,
		NSFW:        r.nsfw,
		Published:   r.published,
		Updated:     r.updated,
	}
}

type commentRow struct {
	id, creatorID, postID, content string
	parentID                       *string
	removed, deleted, read         bool
	published                      time.Time
	updated                        *time.Time
}

func (r *commentRow) targets() []any {
	return []any{
		&r.id, &r.creatorID, &r.postID, &r.parentID, &r.content, &r.removed, &r.deleted, &r.read,
		&r.published, &r.updated,
	}
}

func (r *commentRow) model(p *ids) model.Comment {
	return model.Comment{
		ID:        p.id(r.id),
		CreatorID: p.id(r.creatorID),
		PostID:    p.id(r.postID),
		ParentID:  p.opt(r.parentID),
		Content:   r.content,
		Removed:   r.removed,
		Deleted:   r.deleted,
		Read:      r.read,
		Published: r.published,
		Updated:   r.updated,
	}
}

type mentionRow struct {
	id, recipientID, commentID string
	read                       bool
	published                  time.Time
}

func (r *mentionRow) targets() []any {
	return []any{&r.id, &r.recipientID, &r.commentID, &r.read, &r.published}
}

func (r *mentionRow) model(p *ids) model.Mention {
	return model.Mention{
		ID:          p.id(r.id),
		RecipientID: p.id(r.recipientID),
		CommentID:   p.id(r.commentID),
		Read:        r.read,
		Published:   r.published,
	}
}

type privateMessageRow struct {
	id, creatorID, recipientID, content, apID string
	deleted, read, local                      bool
	published                                 time.Time
	updated                                   *time.Time
}

func (r *privateMessageRow) targets() []any {
	return []any{
		&r.id, &r.creatorID, &r.recipientID, &r.content, &r.deleted, &r.read, &r.apID, &r.local,
		&r.published, &r.updated,
	}
}

func (r *privateMessageRow) model(p *ids) model.PrivateMessage {
	return model.PrivateMessage{
		ID:          p.id(r.id),
		CreatorID:   p.id(r.creatorID),
		RecipientID: p.id(r.recipientID),
		Content:     r.content,
		Deleted:     r.deleted,
		Read:        r.read,
		ApID:        r.apID,
		Local:       r.local,
		Published:   r.published,
		Updated:     r.updated,
	}
}

// concat joins target lists for multi-entity rows.
func concat(lists ...[]any) []any {
	var out []any
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
