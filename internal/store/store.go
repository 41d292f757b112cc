// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

// Package store defines the persistence capability consumed by command
// handlers. Every call is atomic for one entity only; multi-entity workflows
// sequence calls and compensate on failure themselves.
package store

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/agorafed/agora/internal/core"
	"github.com/agorafed/agora/internal/model"
)

// PersonStore manages federated identities.
type PersonStore interface {
	CreatePerson(ctx context.Context, p *model.Person) error
	DeletePerson(ctx context.Context, id ulid.ULID) error
	GetPerson(ctx context.Context, id ulid.ULID) (*model.Person, error)
	GetPersonByName(ctx context.Context, name string) (*model.Person, error)
	GetPersonView(ctx context.Context, id ulid.ULID) (*model.PersonView, error)
	UpdatePersonProfile(ctx context.Context, id ulid.ULID, profile model.PersonProfile) error
	SetPersonBanned(ctx context.Context, id ulid.ULID, banned bool) error
	// DeleteAccount marks the person deleted and scrubs its profile.
	DeleteAccount(ctx context.Context, id ulid.ULID) error
	// ListAdmins returns admin persons ordered by registration time.
	ListAdmins(ctx context.Context) ([]model.PersonView, error)
}

// LocalUserStore manages credentials and settings of local persons.
type LocalUserStore interface {
	// CreateLocalUser returns ErrEmailTaken when the email is in use and
	// ErrConflict for any other uniqueness violation.
	CreateLocalUser(ctx context.Context, lu *model.LocalUser) error
	GetLocalUserView(ctx context.Context, personID ulid.ULID) (*model.LocalUserView, error)
	GetLocalUserViewByID(ctx context.Context, localUserID ulid.ULID) (*model.LocalUserView, error)
	// FindLocalUserView matches a person name or an email, case-insensitively.
	FindLocalUserView(ctx context.Context, nameOrEmail string) (*model.LocalUserView, error)
	FindLocalUserViewByEmail(ctx context.Context, email string) (*model.LocalUserView, error)
	// UpdateLocalUser writes settings, email and password hash atomically.
	// Same conflict mapping as create.
	UpdateLocalUser(ctx context.Context, lu *model.LocalUser) error
	UpdatePassword(ctx context.Context, localUserID ulid.ULID, hash string) error
	SetAdmin(ctx context.Context, personID ulid.ULID, admin bool) error
}

// SiteStore reads the instance record.
type SiteStore interface {
	// GetSite returns ErrNotFound before the site has been set up.
	GetSite(ctx context.Context) (*model.Site, error)
}

// CommunityStore manages communities and memberships.
type CommunityStore interface {
	CreateCommunity(ctx context.Context, c *model.Community) error
	GetCommunityByName(ctx context.Context, name string) (*model.Community, error)
	ListCommunityIDs(ctx context.Context) ([]ulid.ULID, error)
	// FollowCommunity and JoinModerators return ErrConflict for an existing pair.
	FollowCommunity(ctx context.Context, communityID, personID ulid.ULID) error
	JoinModerators(ctx context.Context, communityID, personID ulid.ULID) error
	IsModerator(ctx context.Context, communityID, personID ulid.ULID) (bool, error)
	ListFollows(ctx context.Context, personID ulid.ULID) ([]model.CommunityMembership, error)
	ListModerated(ctx context.Context, personID ulid.ULID) ([]model.CommunityMembership, error)
	SetCommunitiesRemovedForCreator(ctx context.Context, creatorID ulid.ULID, removed bool) error
}

// ContentStore manages posts and comments.
type ContentStore interface {
	ListPosts(ctx context.Context, q PostQuery) ([]model.PostView, error)
	ListComments(ctx context.Context, q CommentQuery) ([]model.CommentView, error)
	SetCommentRead(ctx context.Context, commentID ulid.ULID, read bool) error
	SetPostsRemovedForCreator(ctx context.Context, creatorID ulid.ULID, removed bool) error
	SetCommentsRemovedForCreator(ctx context.Context, creatorID ulid.ULID, removed bool) error
	// Permadelete overwrites content bodies and marks them deleted.
	PermadeletePostsForCreator(ctx context.Context, creatorID ulid.ULID) error
	PermadeleteCommentsForCreator(ctx context.Context, creatorID ulid.ULID) error
}

// MentionStore manages person mentions.
type MentionStore interface {
	GetMention(ctx context.Context, id ulid.ULID) (*model.Mention, error)
	GetMentionView(ctx context.Context, id ulid.ULID) (*model.MentionView, error)
	SetMentionRead(ctx context.Context, id ulid.ULID, read bool) error
	ListMentions(ctx context.Context, q MentionQuery) ([]model.MentionView, error)
	// MarkAllMentionsRead returns the number of mentions changed.
	MarkAllMentionsRead(ctx context.Context, recipientID ulid.ULID) (int64, error)
}

// PrivateMessageStore manages private messages.
type PrivateMessageStore interface {
	CreatePrivateMessage(ctx context.Context, pm *model.PrivateMessage) error
	GetPrivateMessage(ctx context.Context, id ulid.ULID) (*model.PrivateMessage, error)
	GetPrivateMessageView(ctx context.Context, id ulid.ULID) (*model.PrivateMessageView, error)
	UpdatePrivateMessageContent(ctx context.Context, id ulid.ULID, content string) error
	SetPrivateMessageDeleted(ctx context.Context, id ulid.ULID, deleted bool) error
	SetPrivateMessageRead(ctx context.Context, id ulid.ULID, read bool) error
	SetPrivateMessageApID(ctx context.Context, id ulid.ULID, apID string) error
	ListPrivateMessages(ctx context.Context, q PrivateMessageQuery) ([]model.PrivateMessageView, error)
	// MarkAllPrivateMessagesRead returns the number of messages changed.
	MarkAllPrivateMessagesRead(ctx context.Context, recipientID ulid.ULID) (int64, error)
}

// PasswordResetStore manages pending password reset requests.
type PasswordResetStore interface {
	CreatePasswordReset(ctx context.Context, r *model.PasswordResetRequest) error
	GetPasswordResetByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordResetRequest, error)
	DeletePasswordResetsForUser(ctx context.Context, localUserID ulid.ULID) error
	// DeleteExpiredPasswordResets removes requests expired at now.
	DeleteExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error)
}

// ModLogStore appends moderation records. There is no update or delete.
type ModLogStore interface {
	AppendModAdd(ctx context.Context, entry *model.ModAdd) error
	AppendModBan(ctx context.Context, entry *model.ModBan) error
}

// ReportStore counts unresolved content reports.
type ReportStore interface {
	CountCommentReports(ctx context.Context, communityIDs []ulid.ULID) (int64, error)
	CountPostReports(ctx context.Context, communityIDs []ulid.ULID) (int64, error)
}

// OutboxStore queues outbound federation activities.
type OutboxStore interface {
	EnqueueActivity(ctx context.Context, a *model.Activity) error
}

// Store is the full persistence capability.
type Store interface {
	PersonStore
	LocalUserStore
	SiteStore
	CommunityStore
	ContentStore
	MentionStore
	PrivateMessageStore
	PasswordResetStore
	ModLogStore
	ReportStore
	OutboxStore
}

// PostQuery filters a post listing.
type PostQuery struct {
	CreatorID   *ulid.ULID
	CommunityID *ulid.ULID
	// SavedOnly restricts to posts ViewerID saved.
	SavedOnly bool
	ViewerID  *ulid.ULID
	ShowNSFW  bool
	Sort      core.SortType
	Page      core.Page
}

// CommentQuery filters a comment listing.
type CommentQuery struct {
	CreatorID *ulid.ULID
	// RecipientID selects replies to this person's posts and comments.
	RecipientID *ulid.ULID
	SavedOnly   bool
	UnreadOnly  bool
	ViewerID    *ulid.ULID
	Sort        core.SortType
	Page        core.Page
}

// MentionQuery filters a mention listing.
type MentionQuery struct {
	RecipientID ulid.ULID
	UnreadOnly  bool
	Sort        core.SortType
	Page        core.Page
}

// PrivateMessageQuery lists messages sent or received by PersonID.
type PrivateMessageQuery struct {
	PersonID   ulid.ULID
	UnreadOnly bool
	Page       core.Page
}
